package docstore

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

const uniqueViolation = "23505"

// DuplicateError reports which unique index rejected a write.
type DuplicateError struct {
	Constraint string
	err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %q: %v", e.Constraint, e.err)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.err
}

// IsDuplicate reports whether err is a uniqueness violation on the named index.
func IsDuplicate(err error, constraint string) bool {
	var dupErr *DuplicateError
	return errors.As(err, &dupErr) && dupErr.Constraint == constraint
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &DuplicateError{Constraint: pqErr.Constraint, err: err}
	}
	return err
}
