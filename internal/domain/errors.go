package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyTerminal = errors.New("job already in a terminal state")
	ErrSystemTemplate  = errors.New("system templates cannot be deleted")
	ErrDuplicateName   = errors.New("name already exists")
)

// ValidationError rejects a request at the boundary before any row is
// created. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
