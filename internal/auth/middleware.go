package auth

import (
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

// Middleware rejects requests without a valid bearer token and stores the
// session in the request context.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, r, http.StatusUnauthorized, "authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respond.Error(w, r, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
			return
		}

		session, err := i.Parse(token)
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}
