package auth

import "time"

// SuperUserID is the reserved user id whose permission checks always succeed.
const SuperUserID = 1

// UserContext is the denormalized snapshot of a user's identity and resolved
// permission codes, stored in the session for the lifetime of a login. It is
// immutable after creation; a changed permission set only takes effect on the
// next login.
type UserContext struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	IsSuper     bool      `json:"is_super"`
	Authorities []string  `json:"authorities"`
	LastLogin   time.Time `json:"last_login"`
}

// HasAuthority reports whether the user holds the given permission code.
// The super user bypasses the authority set entirely.
func (u *UserContext) HasAuthority(code string) bool {
	if u.IsSuper {
		return true
	}
	for _, a := range u.Authorities {
		if a == code {
			return true
		}
	}
	return false
}

// BearerToken is the successful login response payload.
type BearerToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenType is the scheme prefix clients present in the Authorization header.
const TokenType = "Bearer"
