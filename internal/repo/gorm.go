package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// taskRow is the gorm mapping of the tasks table. Ids are stored as text so
// the same rows work on SQLite.
type taskRow struct {
	ID           string `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	Description  *string
	Completed    bool `gorm:"not null"`
	AssignedUser *string
	Priority     *string
	DueDate      *time.Time
	CreatedAt    time.Time `gorm:"index:tasks_created_at_idx"`
	UpdatedAt    time.Time
}

func (taskRow) TableName() string { return "tasks" }

type userRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	Email     string `gorm:"not null;uniqueIndex"`
	AvatarURL *string
}

func (userRow) TableName() string { return "users" }

type idempotencyRow struct {
	Key        string `gorm:"primaryKey"`
	ResourceID string `gorm:"not null"`
	CreatedAt  time.Time
}

func (idempotencyRow) TableName() string { return "idempotency_keys" }

// OpenSQLite opens an embedded store and creates the schema. ":memory:" is
// allowed; the pool is pinned to one connection so every caller sees the
// same database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRow{}, &userRow{}, &idempotencyRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

func (r *GormTaskRepo) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, ErrorNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	return row.toModel(), nil
}

func (r *GormTaskRepo) Create(ctx context.Context, t model.NewTask) (model.Task, error) {
	if err := validateNew(t); err != nil {
		return model.Task{}, err
	}

	row := newTaskRow(t)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Task{}, err
	}
	return row.toModel(), nil
}

// CreateIdempotent relies on the single SQLite connection: transactions
// never overlap, so the lookup and both inserts see a stable table.
func (r *GormTaskRepo) CreateIdempotent(ctx context.Context, key string, t model.NewTask) (model.Task, error) {
	if err := validateNew(t); err != nil {
		return model.Task{}, err
	}

	var result taskRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing idempotencyRow
		err := tx.First(&existing, "key = ?", key).Error
		if err == nil {
			return tx.First(&result, "id = ?", existing.ResourceID).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		result = newTaskRow(t)
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		return tx.Create(&idempotencyRow{Key: key, ResourceID: result.ID, CreatedAt: result.CreatedAt}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, ErrorNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	return result.toModel(), nil
}

func newTaskRow(t model.NewTask) taskRow {
	now := time.Now().UTC()
	return taskRow{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(t.Title),
		Description:  t.Description,
		AssignedUser: uuidString(t.AssignedUser),
		Priority:     priorityString(t.Priority),
		DueDate:      t.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (r *GormTaskRepo) Update(ctx context.Context, id uuid.UUID, c model.TaskChanges) (model.Task, error) {
	if err := validateChanges(c); err != nil {
		return model.Task{}, err
	}

	values := map[string]any{"updated_at": time.Now().UTC()}
	if c.Title.Set {
		values["title"] = strings.TrimSpace(c.Title.Value)
	}
	if c.Description.Set {
		values["description"] = c.Description.Ptr()
	}
	if c.AssignedUser.Set {
		values["assigned_user"] = uuidString(c.AssignedUser.Ptr())
	}
	if c.Priority.Set {
		values["priority"] = priorityString(c.Priority.Ptr())
	}
	if c.DueDate.Set {
		values["due_date"] = c.DueDate.Ptr()
	}
	if c.Completed.Set {
		values["completed"] = c.Completed.Value
	}

	return r.updateAndFetch(ctx, id, values)
}

func (r *GormTaskRepo) ToggleCompletion(ctx context.Context, id uuid.UUID, current bool) (model.Task, error) {
	return r.updateAndFetch(ctx, id, map[string]any{
		"completed":  !current,
		"updated_at": time.Now().UTC(),
	})
}

func (r *GormTaskRepo) Flip(ctx context.Context, id uuid.UUID) (model.Task, error) {
	return r.updateAndFetch(ctx, id, map[string]any{
		"completed":  gorm.Expr("NOT completed"),
		"updated_at": time.Now().UTC(),
	})
}

func (r *GormTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&taskRow{}, "id = ?", id.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *GormTaskRepo) updateAndFetch(ctx context.Context, id uuid.UUID, values map[string]any) (model.Task, error) {
	result := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id.String()).Updates(values)
	if result.Error != nil {
		return model.Task{}, result.Error
	}
	if result.RowsAffected == 0 {
		return model.Task{}, ErrorNotFound
	}
	return r.Get(ctx, id)
}

func (row taskRow) toModel() model.Task {
	t := model.Task{
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		DueDate:     row.DueDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	t.ID, _ = uuid.Parse(row.ID)
	if row.AssignedUser != nil {
		if id, err := uuid.Parse(*row.AssignedUser); err == nil {
			t.AssignedUser = &id
		}
	}
	if row.Priority != nil {
		p := model.Priority(*row.Priority)
		t.Priority = &p
	}
	return t
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func priorityString(p *model.Priority) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

type GormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

func (r *GormUserRepo) List(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (r *GormUserRepo) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, ErrorNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return row.toModel(), nil
}

func (r *GormUserRepo) Upsert(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	row := userRow{ID: u.ID.String(), Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return model.User{}, err
	}
	return row.toModel(), nil
}

func (row userRow) toModel() model.User {
	u := model.User{Name: row.Name, Email: row.Email, AvatarURL: row.AvatarURL}
	u.ID, _ = uuid.Parse(row.ID)
	return u
}
