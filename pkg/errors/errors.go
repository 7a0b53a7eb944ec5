package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTransport         = errors.New("backend unreachable")
	ErrUnauthorized      = errors.New("unauthorized: invalid or expired token")
	ErrForbidden         = errors.New("forbidden: role has no access")
	ErrNotFound          = errors.New("not found")
	ErrNoData            = errors.New("no data to export")
	ErrUnknownRole       = errors.New("unknown role")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrFormInFlight      = errors.New("form is already submitting")
	ErrInvalidFileFormat = errors.New("invalid file format")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// APIError is a non-2xx answer from the backend that has no sentinel of its own.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// PartialFailureError reports a multi-step write where an earlier step
// succeeded and a later one did not. Nothing is rolled back.
type PartialFailureError struct {
	Step      string
	CreatedID int64
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure at step %q (created id %d): %v", e.Step, e.CreatedID, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func NewPartialFailure(step string, createdID int64, err error) error {
	return &PartialFailureError{
		Step:      step,
		CreatedID: createdID,
		Err:       err,
	}
}

// Required builds the ValidationError used for every missing form field.
func Required(field string) error {
	return ValidationError{
		Field:   field,
		Message: "this field is required",
	}
}
