package auth

import "errors"

// Error kinds surfaced by the auth core. Callers classify with errors.Is;
// httputil maps each kind to an HTTP status and a response envelope.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so a login response never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned when the credentials are correct but
	// the account has been administratively disabled.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrInvalidCredential is returned for a malformed token, a bad
	// signature, or an unexpected signing algorithm.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpiredCredential is returned when the token's embedded expiry has
	// passed, or when the server-side session is gone. Session absence takes
	// precedence over token expiry: revocation must be honored immediately.
	ErrExpiredCredential = errors.New("credential expired")

	// ErrUnauthenticated is returned by guards invoked with no resolved
	// current user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAccessDenied is returned by guards when the current user lacks the
	// required permission or role.
	ErrAccessDenied = errors.New("access denied")

	// ErrSessionNotFound is returned by the session store for subjects that
	// were never stored or whose record expired. The request authenticator
	// treats it as ErrExpiredCredential; it is never exposed to end users.
	ErrSessionNotFound = errors.New("session not found")
)
