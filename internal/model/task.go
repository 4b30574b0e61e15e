package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Completed    bool       `json:"completed"`
	AssignedUser *uuid.UUID `json:"assigned_user,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAssignedTo reports whether the task references the given user id.
func (t Task) IsAssignedTo(id uuid.UUID) bool {
	return t.AssignedUser != nil && *t.AssignedUser == id
}

// TaskInput is the create payload as it arrives from callers. Optional
// fields are plain strings; an empty value means "not set".
type TaskInput struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	AssignedUser string `json:"assigned_user,omitempty"`
	Priority     string `json:"priority,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}

// TaskPatch is the partial update payload. Absent fields are left alone,
// null clears an optional field.
type TaskPatch struct {
	Title        Nullable[string] `json:"title,omitzero"`
	Description  Nullable[string] `json:"description,omitzero"`
	AssignedUser Nullable[string] `json:"assigned_user,omitzero"`
	Priority     Nullable[string] `json:"priority,omitzero"`
	DueDate      Nullable[string] `json:"due_date,omitzero"`
	Completed    Nullable[bool]   `json:"completed,omitzero"`
}

// NewTask holds normalized, typed create fields handed to a repository.
type NewTask struct {
	Title        string
	Description  *string
	AssignedUser *uuid.UUID
	Priority     *Priority
	DueDate      *time.Time
}

// TaskChanges holds normalized update fields handed to a repository.
type TaskChanges struct {
	Title        Nullable[string]
	Description  Nullable[string]
	AssignedUser Nullable[uuid.UUID]
	Priority     Nullable[Priority]
	DueDate      Nullable[time.Time]
	Completed    Nullable[bool]
}

func (c TaskChanges) Empty() bool {
	return !c.Title.Set && !c.Description.Set && !c.AssignedUser.Set &&
		!c.Priority.Set && !c.DueDate.Set && !c.Completed.Set
}
