package services

import "errors"

// Service error taxonomy. Handlers translate these to HTTP responses;
// anything else is an internal failure whose cause is logged, never leaked.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
)

// BadRequestError carries the exact message returned to the client for a
// validation failure.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

func badRequest(message string) error {
	return &BadRequestError{Message: message}
}
