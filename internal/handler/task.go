package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

// TaskService is the part of service.TaskService the HTTP layer depends on.
type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (model.Task, error)
	Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error)
	Update(ctx context.Context, id uuid.UUID, p model.TaskPatch) (model.Task, error)
	ToggleCompletion(ctx context.Context, id uuid.UUID, current bool) (model.Task, error)
	Flip(ctx context.Context, id uuid.UUID) (model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after the JSON value")

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type taskResponse struct {
	Task model.Task `json:"task"`
}

// toggleRequest carries the new desired value. A missing value asks the
// store to negate whatever it currently holds.
type toggleRequest struct {
	Completed *bool `json:"completed"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasksResponse{Tasks: tasks})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.TaskInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		h.badBody(w, r, err)
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), req, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID.String())
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req model.TaskPatch
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	task, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badBody(w, r, err)
		return
	}

	var (
		task model.Task
		err  error
	)
	if req.Completed == nil {
		task, err = h.service.Flip(r.Context(), id)
	} else {
		// body holds the new value, the service wants the previous one
		task, err = h.service.ToggleCompletion(r.Context(), id, !*req.Completed)
	}
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, taskResponse{Task: task})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}

// taskID parses the {id} path segment. Anything that is not a UUID can
// never name a task, so it is reported as not found.
func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "task not found")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads exactly one JSON value of at most maxBodyBytes from the
// request body. An empty body yields io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

func (h *TaskHandler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respond.Error(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
	default:
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
	}
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTransport):
		logger.Warn("request timed out", append(requestFields(r), zap.Error(err))...)
		respond.Error(w, r, http.StatusGatewayTimeout, "request timed out")
	default:
		logger.Error("internal error", append(requestFields(r), zap.Error(err))...)
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

// requestFields identifies the request and, behind the auth gate, its caller.
func requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
	}
	if session, ok := auth.FromContext(r.Context()); ok {
		fields = append(fields, zap.String("user_id", session.UserID.String()))
	}
	return fields
}
