package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type Service interface {
	TaskService
	UserService
}

// NewRouter builds the HTTP surface. gate, when non-nil, wraps every route
// except /health.
func NewRouter(svc Service, logger *zap.Logger, gate func(http.Handler) http.Handler) http.Handler {
	tasks := NewTaskHandler(svc, logger)
	users := NewUserHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if gate != nil {
			r.Use(gate)
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/{id}", tasks.Get)
			r.Put("/{id}", tasks.Update)
			r.Delete("/{id}", tasks.Delete)
			r.Patch("/{id}/toggle", tasks.Toggle)
		})
		r.Get("/users", users.List)
		r.Get("/snapshot", users.Snapshot)
	})

	return r
}
