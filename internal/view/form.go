package view

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const dateLayout = "2006-01-02"

var ErrTitleRequired = errors.New("title is required")

// Mode tells a Form whether it creates a new task or edits an existing one.
type Mode interface {
	mode()
}

type CreateMode struct{}

type EditMode struct {
	Task model.Task
}

func (CreateMode) mode() {}
func (EditMode) mode()   {}

// Form holds the editable fields as the user types them. AssignedUser is a
// user id, empty or Unassigned; DueDate is YYYY-MM-DD or empty.
type Form struct {
	Mode         Mode
	Title        string
	Description  string
	AssignedUser string
	Priority     string
	DueDate      string
}

// Writer is the subset of the API a form submits through.
type Writer interface {
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, p model.TaskPatch) (model.Task, error)
}

// NewForm prefills the fields for mode. New tasks default to medium
// priority; edited tasks without a priority show medium as well.
func NewForm(m Mode) Form {
	f := Form{Mode: m, Priority: string(model.PriorityMedium)}

	edit, ok := m.(EditMode)
	if !ok {
		f.Mode = CreateMode{}
		return f
	}

	t := edit.Task
	f.Title = t.Title
	if t.Description != nil {
		f.Description = *t.Description
	}
	if t.AssignedUser != nil {
		f.AssignedUser = t.AssignedUser.String()
	}
	if t.Priority != nil {
		f.Priority = string(*t.Priority)
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.UTC().Format(dateLayout)
	}
	return f
}

func (f Form) Editing() bool {
	_, ok := f.Mode.(EditMode)
	return ok
}

// Submit creates or updates the task depending on the mode. Edits send only
// the fields that differ from the original task; a cleared optional field
// is sent as null.
func (f Form) Submit(ctx context.Context, api Writer) (model.Task, error) {
	if strings.TrimSpace(f.Title) == "" {
		return model.Task{}, ErrTitleRequired
	}

	switch m := f.Mode.(type) {
	case EditMode:
		return api.UpdateTask(ctx, m.Task.ID, f.patch(m.Task))
	default:
		return api.CreateTask(ctx, f.input())
	}
}

func (f Form) input() model.TaskInput {
	return model.TaskInput{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		AssignedUser: f.assignee(),
		Priority:     f.Priority,
		DueDate:      f.DueDate,
	}
}

func (f Form) patch(orig model.Task) model.TaskPatch {
	var p model.TaskPatch

	if title := strings.TrimSpace(f.Title); title != orig.Title {
		p.Title = model.Value(title)
	}

	p.Description = diffText(strings.TrimSpace(f.Description), orig.Description)

	var origAssignee *string
	if orig.AssignedUser != nil {
		s := orig.AssignedUser.String()
		origAssignee = &s
	}
	p.AssignedUser = diffText(f.assignee(), origAssignee)

	var origPriority *string
	if orig.Priority != nil {
		s := string(*orig.Priority)
		origPriority = &s
	}
	p.Priority = diffText(f.Priority, origPriority)

	var origDue *string
	if orig.DueDate != nil {
		s := orig.DueDate.UTC().Format(dateLayout)
		origDue = &s
	}
	p.DueDate = diffText(f.DueDate, origDue)

	return p
}

func (f Form) assignee() string {
	if f.AssignedUser == Unassigned {
		return ""
	}
	return strings.TrimSpace(f.AssignedUser)
}

// diffText compares a form value against the stored one: unchanged is
// absent, cleared is null, anything else is the new value.
func diffText(cur string, orig *string) model.Nullable[string] {
	switch {
	case orig == nil && cur == "":
		return model.Nullable[string]{}
	case orig != nil && cur == *orig:
		return model.Nullable[string]{}
	case cur == "":
		return model.Null[string]()
	}
	return model.Value(cur)
}
