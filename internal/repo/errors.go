package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrorNotFound   = errors.New("not found")
	ErrorValidation = errors.New("validation error")
)

func validateNew(t model.NewTask) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrorValidation)
	}
	if t.Priority != nil && !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrorValidation, *t.Priority)
	}
	return nil
}

func validateChanges(c model.TaskChanges) error {
	if c.Title.Set && (c.Title.Null || strings.TrimSpace(c.Title.Value) == "") {
		return fmt.Errorf("%w: title cannot be empty", ErrorValidation)
	}
	if c.Completed.Set && c.Completed.Null {
		return fmt.Errorf("%w: completed cannot be null", ErrorValidation)
	}
	if c.Priority.Set && !c.Priority.Null && !c.Priority.Value.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrorValidation, c.Priority.Value)
	}
	return nil
}
