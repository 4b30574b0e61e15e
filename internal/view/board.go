package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// API is what the board needs from the server. *client.Client satisfies it.
type API interface {
	Writer
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ToggleTask(ctx context.Context, id uuid.UUID, completed bool) (model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Board is the client-side state of the task board. It never merges the
// result of a mutation locally; every successful write is followed by a
// full refresh.
type Board struct {
	api    API
	logger *zap.Logger

	mu    sync.RWMutex
	tasks []model.Task
	users []model.User
}

func NewBoard(api API, logger *zap.Logger) *Board {
	return &Board{
		api:    api,
		logger: logger,
		tasks:  []model.Task{},
		users:  []model.User{},
	}
}

// Refresh fetches tasks and users side by side. Each list is replaced only
// when its own fetch succeeds; the first error is returned.
func (b *Board) Refresh(ctx context.Context) error {
	var (
		tasks              []model.Task
		users              []model.User
		tasksErr, usersErr error
		g                  errgroup.Group
	)
	g.Go(func() error {
		tasks, tasksErr = b.api.ListTasks(ctx)
		return tasksErr
	})
	g.Go(func() error {
		users, usersErr = b.api.ListUsers(ctx)
		return usersErr
	})
	err := g.Wait()

	b.mu.Lock()
	if tasksErr == nil {
		b.tasks = tasks
	} else {
		b.logger.Error("Error fetching tasks", zap.Error(tasksErr))
	}
	if usersErr == nil {
		b.users = users
	} else {
		b.logger.Error("Error fetching users", zap.Error(usersErr))
	}
	b.mu.Unlock()

	return err
}

func (b *Board) Tasks() []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Task(nil), b.tasks...)
}

func (b *Board) Users() []model.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.User(nil), b.users...)
}

func (b *Board) Visible(f Filter) []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return f.Apply(b.tasks, b.users)
}

func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Count(b.tasks)
}

func (b *Board) Groups() []Group {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return GroupByAssignee(b.tasks, b.users)
}

// Toggle flips a task based on the completion state currently shown.
func (b *Board) Toggle(ctx context.Context, t model.Task) error {
	if _, err := b.api.ToggleTask(ctx, t.ID, t.Completed); err != nil {
		b.logger.Error("Error toggling task", zap.String("task_id", t.ID.String()), zap.Error(err))
		return fmt.Errorf("toggle task: %w", err)
	}
	return b.Refresh(ctx)
}

func (b *Board) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.api.DeleteTask(ctx, id); err != nil {
		b.logger.Error("Error deleting task", zap.String("task_id", id.String()), zap.Error(err))
		return fmt.Errorf("delete task: %w", err)
	}
	return b.Refresh(ctx)
}

func (b *Board) Save(ctx context.Context, f Form) (model.Task, error) {
	t, err := f.Submit(ctx, b.api)
	if err != nil {
		b.logger.Error("Error saving task", zap.Bool("editing", f.Editing()), zap.Error(err))
		return model.Task{}, fmt.Errorf("save task: %w", err)
	}
	return t, b.Refresh(ctx)
}
