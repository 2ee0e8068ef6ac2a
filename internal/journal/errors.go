package journal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entry does not exist for the requesting user.
var ErrNotFound = errors.New("entry not found")

// ErrClassifierUnavailable is returned when an entry has no emotion label and
// the classifier could not produce one.
var ErrClassifierUnavailable = errors.New("emotion classifier unavailable")

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is or wraps a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
