package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/proximahq/proxima/pkg/observability"
)

// Account is the minimal user record the auth core needs from the data-access
// layer to decide a login attempt.
type Account struct {
	ID             int64
	Username       string
	Email          string
	PasswordDigest string
	Disabled       bool
}

// UserFinder is the credential-lookup collaborator. A missing email returns
// (nil, nil), not an error; the service folds it into ErrInvalidCredentials.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*Account, error)
}

// AuthorityResolver computes the distinct permission codes reachable through
// every role assigned to a user. An empty result is a valid outcome.
type AuthorityResolver interface {
	ResolveAuthorities(ctx context.Context, userID int64) ([]string, error)
}

// Service orchestrates login and logout.
type Service struct {
	users    UserFinder
	resolver AuthorityResolver
	sessions *SessionStore
	codec    *Codec
	hasher   *PasswordHasher
	ttl      time.Duration
	logger   *observability.Logger

	now        func() time.Time
	newSubject func() string
}

// NewService creates the authentication service. ttl governs both the session
// record and the issued token, so the two expire together unless sliding
// refresh extends the session.
func NewService(users UserFinder, resolver AuthorityResolver, sessions *SessionStore, codec *Codec, hasher *PasswordHasher, ttl time.Duration, logger *observability.Logger) *Service {
	return &Service{
		users:      users,
		resolver:   resolver,
		sessions:   sessions,
		codec:      codec,
		hasher:     hasher,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
		newSubject: uuid.NewString,
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.now = now
	return &clone
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Login verifies the credentials and, on success, persists a fresh session
// and issues a bearer token for it. The steps run strictly in order: no
// session is persisted before the password verifies, no token is issued
// before the session is persisted.
//
// A logout racing a concurrent login for the same user cannot collide:
// subjects are unique per login and never reused.
func (s *Service) Login(ctx context.Context, email, password string) (*BearerToken, error) {
	account, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if account == nil || !s.hasher.Verify(password, account.PasswordDigest) {
		// Identical failure for unknown email and wrong password.
		return nil, ErrInvalidCredentials
	}
	if account.Disabled {
		return nil, ErrAccountDisabled
	}

	authorities, err := s.resolver.ResolveAuthorities(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorities: %w", err)
	}

	user := &UserContext{
		ID:          account.ID,
		Username:    account.Username,
		IsSuper:     account.ID == SuperUserID,
		Authorities: authorities,
		LastLogin:   s.now().UTC(),
	}

	subject := s.newSubject()
	if err := s.sessions.Put(ctx, subject, user, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	token, expiresAt, err := s.codec.Issue(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	s.logger.WithField("user_id", account.ID).Info("login succeeded")

	return &BearerToken{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

// Logout invalidates the session for the given subject. It is idempotent:
// logging out twice, or logging out an already-expired session, succeeds
// silently.
func (s *Service) Logout(ctx context.Context, subject string) error {
	deleted, err := s.sessions.Delete(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted {
		s.logger.Debug("session invalidated")
	}
	return nil
}
