package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

func TestClient_ListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"tasks":[{"id":"` + uuid.NewString() + `","title":"A","completed":false}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("secret-token"))
	tasks, err := c.ListTasks(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
}

func TestClient_ListTasks_MissingEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tasks, err := New(srv.URL).ListTasks(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_ToggleSendsNegation(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/tasks/"+id.String()+"/toggle", r.URL.Path)

		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]bool{"completed": true}, body)

		w.Write([]byte(`{"task":{"id":"` + id.String() + `","title":"T","completed":true}}`))
	}))
	defer srv.Close()

	task, err := New(srv.URL).ToggleTask(context.Background(), id, false)

	require.NoError(t, err)
	assert.True(t, task.Completed)
}

func TestClient_FlipSendsNoBody(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(0), r.ContentLength)
		w.Write([]byte(`{"task":{"id":"` + id.String() + `","title":"T","completed":true}}`))
	}))
	defer srv.Close()

	task, err := New(srv.URL).FlipTask(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
}

func TestClient_CreateTaskWithKey(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "retry-1", r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"` + id.String() + `","title":"T"}`))
	}))
	defer srv.Close()

	task, err := New(srv.URL).CreateTaskWithKey(context.Background(), "retry-1", model.TaskInput{Title: "T"})

	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
}

func TestClient_UpdateSendsOnlySetFields(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"priority": "high", "assigned_user": nil}, body)
		w.Write([]byte(`{"id":"` + id.String() + `","title":"T"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).UpdateTask(context.Background(), id, model.TaskPatch{
		Priority:     model.Value("high"),
		AssignedUser: model.Null[string](),
	})
	require.NoError(t, err)
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		notFound    bool
	}{
		{
			name:        "error envelope",
			status:      http.StatusNotFound,
			body:        `{"error":"not found"}`,
			wantMessage: "not found",
			notFound:    true,
		},
		{
			name:        "bare status",
			status:      http.StatusInternalServerError,
			body:        `oops`,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).DeleteTask(context.Background(), uuid.New())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.NotErrorIs(t, err, ErrTransport)
		})
	}
}

func TestClient_DeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).DeleteTask(context.Background(), uuid.New()))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).ListUsers(context.Background())

	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListTasks(context.Background())

	assert.ErrorIs(t, err, ErrTransport)
}
