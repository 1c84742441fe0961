package serverutils

import "fmt"

// ValidationError is a well-formed request whose fields are out of range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BadRequestError is a request that could not be parsed at all.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}
