package services

import "errors"

type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryAuthorization ErrorCategory = "authorization"
	CategoryState         ErrorCategory = "state"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryConflict      ErrorCategory = "conflict"
)

// DomainError is a categorized, user-reportable failure. Every rejected
// operation returns one of these so handlers can map category to an HTTP
// status without inspecting message text.
type DomainError struct {
	Category ErrorCategory
	Message  string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Category: CategoryValidation, Message: message}
}

func NewAuthorizationError(message string) *DomainError {
	return &DomainError{Category: CategoryAuthorization, Message: message}
}

func NewStateError(message string) *DomainError {
	return &DomainError{Category: CategoryState, Message: message}
}

func NewNotFoundError(message string) *DomainError {
	return &DomainError{Category: CategoryNotFound, Message: message}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Category: CategoryConflict, Message: message}
}

// CategoryOf extracts the category from an error, if it is a DomainError.
func CategoryOf(err error) (ErrorCategory, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Category, true
	}
	return "", false
}
