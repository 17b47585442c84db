// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// CurrentUserKey contains *auth.UserContext
	// Set by: middleware.Authenticator (pkg/middleware/auth.go)
	// Required by: guards and all protected endpoints
	// Type: *auth.UserContext
	CurrentUserKey Key = "current_user"

	// SubjectKey contains the opaque session subject string
	// Set by: middleware.Authenticator after token verification
	// Used by: the logout handler to invalidate the session
	// Type: string
	SubjectKey Key = "session_subject"

	// RequestIDKey contains request ID string (UUID)
	// Set by: observability request middleware
	// Used by: logger, error responses
	// Type: string
	RequestIDKey Key = "request_id"
)
