package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Demonism0/blog-api/internal/repository"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrInconsistent reports a cascading write that was only partly applied
	// and could not be undone.
	ErrInconsistent       = errors.New("inconsistent state")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError carries the submitted fields back to the caller together
// with one message per failed rule.
type ValidationError struct {
	Fields map[string]any
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// fail classifies a repository error for operation op.
func fail(op string, err error) error {
	// ErrInconsistent may wrap a repository.ErrNotFound from a failed restore
	// and must win over it.
	switch {
	case errors.Is(err, ErrInconsistent):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
}
