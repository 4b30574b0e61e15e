package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const dateLayout = "2006-01-02"

func normalizeInput(in model.TaskInput) (model.NewTask, error) {
	t := model.NewTask{Title: strings.TrimSpace(in.Title)}
	if t.Title == "" {
		return t, fmt.Errorf("%w: title is required", ErrValidation)
	}

	t.Description = optionalText(in.Description)

	var err error
	if t.AssignedUser, err = parseUserID(in.AssignedUser); err != nil {
		return t, err
	}
	if t.Priority, err = parsePriority(in.Priority); err != nil {
		return t, err
	}
	if t.DueDate, err = parseDueDate(in.DueDate); err != nil {
		return t, err
	}
	return t, nil
}

func normalizePatch(p model.TaskPatch) (model.TaskChanges, error) {
	var c model.TaskChanges

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if p.Title.Null || title == "" {
			return c, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		c.Title = model.Value(title)
	}

	switch {
	case !p.Description.Set:
	case p.Description.Null:
		c.Description = model.Null[string]()
	default:
		if d := optionalText(p.Description.Value); d != nil {
			c.Description = model.Value(*d)
		}
	}

	switch {
	case !p.AssignedUser.Set:
	case p.AssignedUser.Null:
		c.AssignedUser = model.Null[uuid.UUID]()
	default:
		id, err := parseUserID(p.AssignedUser.Value)
		if err != nil {
			return c, err
		}
		if id != nil {
			c.AssignedUser = model.Value(*id)
		}
	}

	switch {
	case !p.Priority.Set:
	case p.Priority.Null:
		c.Priority = model.Null[model.Priority]()
	default:
		pr, err := parsePriority(p.Priority.Value)
		if err != nil {
			return c, err
		}
		if pr != nil {
			c.Priority = model.Value(*pr)
		}
	}

	switch {
	case !p.DueDate.Set:
	case p.DueDate.Null:
		c.DueDate = model.Null[time.Time]()
	default:
		due, err := parseDueDate(p.DueDate.Value)
		if err != nil {
			return c, err
		}
		if due != nil {
			c.DueDate = model.Value(*due)
		}
	}

	if p.Completed.Set {
		if p.Completed.Null {
			return c, fmt.Errorf("%w: completed cannot be null", ErrValidation)
		}
		c.Completed = model.Value(p.Completed.Value)
	}
	return c, nil
}

// optionalText turns blank input into an absent value.
func optionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func parseUserID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: assigned_user must be a user id", ErrValidation)
	}
	return &id, nil
}

func parsePriority(s string) (*model.Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	p := model.Priority(s)
	if !p.Valid() {
		return nil, fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	}
	return &p, nil
}

// parseDueDate accepts RFC 3339 timestamps and bare calendar dates.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be an ISO-8601 date", ErrValidation)
	}
	return &t, nil
}
