package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and verifies the signed bearer credential. Tokens are
// self-contained HS256 JWTs carrying exactly two claims: the opaque session
// subject (`sub`) and an absolute expiry (`exp`). Nothing is stored server
// side; validity is signature plus expiry.
//
// The signing secret and clock are injected at construction so tests can run
// with fixed keys and frozen time.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a credential codec with the given process-wide secret and
// token lifetime.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the codec's time source. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	clone := *c
	clone.now = now
	return &clone
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given subject, expiring ttl from now.
func (c *Codec) Issue(subject string) (string, time.Time, error) {
	expiresAt := c.now().Add(c.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign credential: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded subject.
// An elapsed expiry yields ErrExpiredCredential; anything else wrong with the
// token (bad signature, foreign algorithm, malformed encoding, missing
// subject) yields ErrInvalidCredential.
func (c *Codec) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredCredential
		}
		return "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	return claims.Subject, nil
}
