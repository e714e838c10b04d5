package services

import (
	"context"
	"errors"
	"fmt"

	"breadit/internal/db"

	"gorm.io/gorm"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidInput     = errors.New("invalid_input")
	ErrNotFound         = errors.New("not_found")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store_unavailable")
)

// Error carries the failing operation, its kind, a caller-facing detail and the cause.
type Error struct {
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retriable reports whether the caller may safely repeat the action.
func (e *Error) Retriable() bool {
	return e.Kind == ErrConflict || e.Kind == ErrStoreUnavailable
}

func newError(op string, kind error, detail string) error {
	return &Error{Op: op, Kind: kind, Detail: detail}
}

// KindOf returns the taxonomy kind of err, or nil when err is not a service error.
func KindOf(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return nil
}

// Detail returns the caller-facing detail of a service error.
func Detail(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Detail
	}
	return ""
}

// storeError classifies a store failure into the taxonomy. Errors that are
// already service errors pass through untouched.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Op: op, Kind: ErrNotFound, Err: err}
	case db.IsUniqueViolation(err):
		return &Error{Op: op, Kind: ErrConflict, Detail: "concurrent write, retry", Err: err}
	case db.IsForeignKeyViolation(err):
		return &Error{Op: op, Kind: ErrNotFound, Detail: "referenced record does not exist", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Op: op, Kind: ErrStoreUnavailable, Detail: "request cancelled", Err: err}
	case db.IsUnavailable(err):
		return &Error{Op: op, Kind: ErrStoreUnavailable, Detail: "database unavailable", Err: err}
	default:
		return &Error{Op: op, Kind: ErrStoreUnavailable, Err: err}
	}
}
