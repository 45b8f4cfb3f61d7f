package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the API layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Error is a classified, client-safe failure. Message is shown to the
// caller; Field names the offending input when there is one.
type Error struct {
	Kind    Kind
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Registration and login errors
var (
	ErrMissingFields      = newError(KindValidation, "", "Not all fields have been entered.")
	ErrPasswordLength     = newError(KindValidation, "password", "Password must be between 6-25 characters")
	ErrUsernameLength     = newError(KindValidation, "username", "Username must be 4-15 characters.")
	ErrNameRequired       = newError(KindValidation, "name", "Name is required.")
	ErrUsernameTaken      = newError(KindConflict, "username", "An account with this username already exists.")
	ErrEmailTaken         = newError(KindConflict, "email", "An account with this email already exists.")
	ErrInvalidCredentials = newError(KindAuth, "", "Invalid credentials. Please try again.")
)

// Token and session errors
var (
	ErrMissingToken         = newError(KindAuth, "", "No authentication token, authorization denied.")
	ErrInvalidToken         = newError(KindAuth, "", "Token verification failed, authorization denied.")
	ErrResetTokenInvalid    = newError(KindAuth, "", "Invalid or expired token")
	ErrUserNotFound         = newError(KindNotFound, "", "User not found")
	ErrConversationNotFound = newError(KindNotFound, "", "Conversation not found.")
	ErrInvalidRequestBody   = newError(KindValidation, "", "Invalid request body")
)

// Dependency errors
var (
	ErrStoreUnavailable    = newError(KindDependency, "", "Credential store is unavailable")
	ErrUpstreamUnavailable = newError(KindDependency, "", "Fitness service is unavailable")
	ErrMailUnavailable     = newError(KindDependency, "", "Error sending email")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// StoreError wraps a storage failure as a dependency error, keeping the cause.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Validation builds an ad-hoc validation error for request shapes that have
// no dedicated sentinel.
func Validation(field, message string) *Error {
	return newError(KindValidation, field, message)
}
