package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
)

func protected(issuer *auth.Issuer) http.Handler {
	return issuer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(s.UserID.String()))
	}))
}

func TestMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("test-secret-key", time.Hour)
	userID := uuid.New()
	token, err := issuer.Issue(auth.Session{UserID: userID})
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{
			name:     "valid token",
			header:   "Bearer " + token,
			wantCode: http.StatusOK,
			wantBody: userID.String(),
		},
		{
			name:     "no header",
			wantCode: http.StatusUnauthorized,
			wantBody: "authorization header is required",
		},
		{
			name:     "wrong scheme",
			header:   "Basic " + token,
			wantCode: http.StatusUnauthorized,
			wantBody: "Bearer {token}",
		},
		{
			name:     "garbage token",
			header:   "Bearer invalid-token",
			wantCode: http.StatusUnauthorized,
			wantBody: "invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			protected(issuer).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
