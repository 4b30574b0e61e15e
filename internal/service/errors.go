package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

var (
	ErrValidation = repo.ErrorValidation
	ErrNotFound   = repo.ErrorNotFound
	// ErrStore wraps failures reported by the backing store.
	ErrStore = errors.New("store error")
	// ErrTransport is returned when a call runs out of time or its caller goes away.
	ErrTransport = errors.New("transport error")
)

// classify maps a repository error onto one of the service error kinds.
func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	default:
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
}
