package shared

import "errors"

var (
	// ErrSessionMissing is returned when a request carries no browser session.
	ErrSessionMissing = errors.New("session missing")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrCSRFTokenForeign occurs when a token was minted for another session ID.
	ErrCSRFTokenForeign = errors.New("csrf token bound to another session")
)
