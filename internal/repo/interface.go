package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (model.Task, error)
	Create(ctx context.Context, t model.NewTask) (model.Task, error)
	// CreateIdempotent creates at most one task per key. Repeating a key
	// returns the task created by its first use.
	CreateIdempotent(ctx context.Context, key string, t model.NewTask) (model.Task, error)
	Update(ctx context.Context, id uuid.UUID, c model.TaskChanges) (model.Task, error)
	// ToggleCompletion stores !current without reading the row first.
	ToggleCompletion(ctx context.Context, id uuid.UUID, current bool) (model.Task, error)
	// Flip negates completed inside a single statement.
	Flip(ctx context.Context, id uuid.UUID) (model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory is read-only for the task core; Upsert exists for the
// identity subsystem and for seeding.
type UserDirectory interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	Upsert(ctx context.Context, u model.User) (model.User, error)
}
