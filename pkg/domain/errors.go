package domain

import "fmt"

// ErrorKind classifies an AppError for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindForbidden
	KindUnauthorized
	KindInvalidState
)

// AppError is the error type returned by application and domain code. It
// carries a stable machine-readable code alongside the human message so the
// routing layer can map it to an HTTP status without string matching.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an AppError with an explicit kind and code.
func NewError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error for the given entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError creates a generic conflict error.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

// NewValidationError creates a business-rule validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// NewForbiddenError creates an authorization error.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{
		Kind:    KindInvalidState,
		Code:    "INVALID_STATUS",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message}
}
