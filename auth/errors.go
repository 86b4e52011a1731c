package auth

import "fmt"

// Kind classifies a failure for the API boundary. Each kind maps to exactly
// one HTTP status.
type Kind string

const (
	KindValidation     Kind = "validation_error"     // 400
	KindConflict       Kind = "conflict_error"       // 409
	KindAuthentication Kind = "authentication_error" // 401
	KindDependency     Kind = "dependency_error"     // 503
)

// Sentinels for errors.Is checks against a returned *Error.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrDependency     = &Error{Kind: KindDependency}
)

// invalidCredentialsMessage is used for every credential failure on Login so
// responses cannot distinguish an unknown handle from a wrong password.
const invalidCredentialsMessage = "invalid handle or password"

// Error is a classified service failure. Message is safe to return to
// clients; cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on Kind so errors.Is(err, ErrAuthentication) works regardless of
// message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func authenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func dependencyError(message string, cause error) *Error {
	return &Error{Kind: KindDependency, Message: message, cause: cause}
}
