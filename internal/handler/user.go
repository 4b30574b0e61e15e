package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	Refresh(ctx context.Context) (service.Snapshot, error)
}

type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

func NewUserHandler(srv UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: srv, logger: logger}
}

type usersResponse struct {
	Users []model.User `json:"users"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, usersResponse{Users: users})
}

type snapshotResponse struct {
	Tasks  []model.Task      `json:"tasks"`
	Users  []model.User      `json:"users"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Snapshot returns tasks and users fetched side by side. A failed half is
// reported under errors and left empty; the request itself still succeeds.
func (h *UserHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())

	resp := snapshotResponse{Tasks: snap.Tasks, Users: snap.Users}
	if resp.Tasks == nil {
		resp.Tasks = []model.Task{}
	}
	if resp.Users == nil {
		resp.Users = []model.User{}
	}

	if err != nil {
		resp.Errors = map[string]string{}
		if snap.TasksErr != nil {
			h.logger.Error("snapshot: list tasks", append(requestFields(r), zap.Error(snap.TasksErr))...)
			resp.Errors["tasks"] = "failed to fetch tasks"
		}
		if snap.UsersErr != nil {
			h.logger.Error("snapshot: list users", append(requestFields(r), zap.Error(snap.UsersErr))...)
			resp.Errors["users"] = "failed to fetch users"
		}
	}
	respond.JSON(w, r, http.StatusOK, resp)
}
