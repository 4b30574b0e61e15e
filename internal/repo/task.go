package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const taskColumns = `id, title, description, completed, assigned_user, priority, due_date, created_at, updated_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, r.mapError(err)
	}

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, r.mapError(err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))
	return t, r.mapError(err)
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TaskRepo) Create(ctx context.Context, t model.NewTask) (model.Task, error) {
	if err := validateNew(t); err != nil {
		return model.Task{}, err
	}

	created, err := insertTask(ctx, r.pool, t)
	return created, r.mapError(err)
}

func (r *TaskRepo) CreateIdempotent(ctx context.Context, key string, t model.NewTask) (model.Task, error) {
	if err := validateNew(t); err != nil {
		return model.Task{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback(ctx)

	created, err := insertTask(ctx, tx, t)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}

	// Конкурентная вставка того же ключа ждет здесь коммита первой
	cmd, err := tx.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, created.ID)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}
	if cmd.RowsAffected() == 1 {
		if err := tx.Commit(ctx); err != nil {
			return model.Task{}, err
		}
		return created, nil
	}

	// Ключ уже использован: откатываем свою вставку и отдаем сохраненную задачу
	if err := tx.Rollback(ctx); err != nil {
		return model.Task{}, err
	}
	id, err := r.getIdempotencyKey(ctx, key)
	if err != nil {
		return model.Task{}, err
	}
	return r.Get(ctx, id)
}

func (r *TaskRepo) getIdempotencyKey(ctx context.Context, key string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&id)
	return id, r.mapError(err)
}

func insertTask(ctx context.Context, q querier, t model.NewTask) (model.Task, error) {
	var priority *string
	if t.Priority != nil {
		p := string(*t.Priority)
		priority = &p
	}

	return scanTask(q.QueryRow(ctx, `
		INSERT INTO tasks (title, description, assigned_user, priority, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		strings.TrimSpace(t.Title), t.Description, t.AssignedUser, priority, t.DueDate,
	))
}

func (r *TaskRepo) Update(ctx context.Context, id uuid.UUID, c model.TaskChanges) (model.Task, error) {
	if err := validateChanges(c); err != nil {
		return model.Task{}, err
	}

	// Собираем SET только из переданных полей
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if c.Title.Set {
		add("title", strings.TrimSpace(c.Title.Value))
	}
	if c.Description.Set {
		add("description", c.Description.Ptr())
	}
	if c.AssignedUser.Set {
		add("assigned_user", c.AssignedUser.Ptr())
	}
	if c.Priority.Set {
		var p *string
		if !c.Priority.Null {
			s := string(c.Priority.Value)
			p = &s
		}
		add("priority", p)
	}
	if c.DueDate.Set {
		add("due_date", c.DueDate.Ptr())
	}
	if c.Completed.Set {
		add("completed", c.Completed.Value)
	}

	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+taskColumns,
		args...,
	))
	return t, r.mapError(err)
}

func (r *TaskRepo) ToggleCompletion(ctx context.Context, id uuid.UUID, current bool) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, !current,
	))
	return t, r.mapError(err)
}

func (r *TaskRepo) Flip(ctx context.Context, id uuid.UUID) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = NOT completed, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id,
	))
	return t, r.mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return r.mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t        model.Task
		priority *string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.AssignedUser,
		&priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	if priority != nil {
		p := model.Priority(*priority)
		t.Priority = &p
	}
	return t, nil
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "22P02", "23502": // check_violation, invalid_text_representation, not_null_violation
			return fmt.Errorf("%w: %s", ErrorValidation, pgErr.Message)
		}
	}
	return err
}
