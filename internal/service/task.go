package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

const (
	DefaultTimeout       = 10 * time.Second
	MaxIdempotencyKeyLen = 255
)

type TaskService struct {
	tasks   repo.TaskRepository
	users   repo.UserDirectory
	timeout time.Duration
}

// NewTaskService wires the repositories behind the service boundary. A
// non-positive timeout falls back to DefaultTimeout.
func NewTaskService(tasks repo.TaskRepository, users repo.UserDirectory, timeout time.Duration) *TaskService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TaskService{tasks: tasks, users: users, timeout: timeout}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.tasks.Get(ctx, id)
	return t, classify(ctx, err)
}

// Create stores a new task. A non-empty idempKey makes the call safe to
// repeat: every call with the same key returns the task created by the first.
func (s *TaskService) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	t, err := normalizeInput(in) // Валидация до обращения к БД
	if err != nil {
		return model.Task{}, err
	}
	idempKey = strings.TrimSpace(idempKey)
	if len(idempKey) > MaxIdempotencyKeyLen {
		return model.Task{}, fmt.Errorf("%w: idempotency key is longer than %d bytes", ErrValidation, MaxIdempotencyKeyLen)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var created model.Task
	if idempKey != "" {
		created, err = s.tasks.CreateIdempotent(ctx, idempKey, t)
	} else {
		created, err = s.tasks.Create(ctx, t)
	}
	return created, classify(ctx, err)
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, p model.TaskPatch) (model.Task, error) {
	changes, err := normalizePatch(p)
	if err != nil {
		return model.Task{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.tasks.Update(ctx, id, changes)
	return updated, classify(ctx, err)
}

// ToggleCompletion stores the negation of current, the caller's last known
// value. Two callers holding the same stale value will both write the same
// result; use Flip when that matters.
func (s *TaskService) ToggleCompletion(ctx context.Context, id uuid.UUID, current bool) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.tasks.ToggleCompletion(ctx, id, current)
	return t, classify(ctx, err)
}

func (s *TaskService) Flip(ctx context.Context, id uuid.UUID) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.tasks.Flip(ctx, id)
	return t, classify(ctx, err)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return classify(ctx, s.tasks.Delete(ctx, id))
}

func (s *TaskService) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return users, nil
}

// Snapshot is the result of a refresh. The two lists are fetched
// independently; either may fail while the other succeeds.
type Snapshot struct {
	Tasks    []model.Task
	Users    []model.User
	TasksErr error
	UsersErr error
}

// Refresh fetches tasks and users concurrently. The snapshot always carries
// both halves' results; the returned error is the first failure, if any.
func (s *TaskService) Refresh(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		g    errgroup.Group
	)
	g.Go(func() error {
		snap.Tasks, snap.TasksErr = s.List(ctx)
		return snap.TasksErr
	})
	g.Go(func() error {
		snap.Users, snap.UsersErr = s.ListUsers(ctx)
		return snap.UsersErr
	})
	err := g.Wait()
	return snap, err
}
