package session

import "errors"

var (
	// ErrPasswordRequired is returned when the login body has no password.
	ErrPasswordRequired = errors.New("session: password is required")

	// ErrUnknownVerification is returned for an unrecognised SESSION_VERIFICATION.
	ErrUnknownVerification = errors.New("session: unknown verification mode")
)

// AuthError is a wrong or missing credential.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

var errInvalidPassword = &AuthError{Message: "Invalid password"}
