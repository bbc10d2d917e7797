// Package service holds the classroom use cases: roster, grids, desk-mate
// groups, the fill orchestrator and reveal playback.  Services are
// constructed once in main and shared by the handlers.
package service

import (
	"errors"
	"strings"
)

var (
	ErrLayoutNotFound  = errors.New("layout not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrGroupNotFound   = errors.New("desk-mate group not found")
	ErrRecordNotFound  = errors.New("seating record not found")
	ErrDuplicateName   = errors.New("student name already exists")
	ErrStudentInGroup  = errors.New("student already belongs to another group")
	ErrNoPlayback      = errors.New("no playback for this layout")
)

// ValidationError carries every problem found in a construction-style
// request.  Handlers answer it with 400.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Errors, ", ") }

// invalid returns nil for an empty list so callers can write
// `if err := invalid(errs); err != nil`.
func invalid(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
