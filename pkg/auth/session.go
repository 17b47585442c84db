package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionKeyPrefix namespaces session keys so they cannot collide with
// unrelated data in a shared Redis.
const SessionKeyPrefix = "proxima:auth:"

// SessionStore maps opaque session subjects to serialized UserContext
// records with per-key expiry. Redis enforces the TTL, so an expired record
// and a never-written record both read as absent. Atomicity of concurrent
// operations on one subject is Redis's job, not ours.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a session store on the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(subject string) string {
	return SessionKeyPrefix + subject
}

// Put stores the context under subject with the given TTL, overwriting any
// existing record.
func (s *SessionStore) Put(ctx context.Context, subject string, user *UserContext, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(subject), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Get loads the context stored under subject. Absent (never set or expired)
// yields ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, subject string) (*UserContext, error) {
	data, err := s.client.Get(ctx, sessionKey(subject)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user UserContext
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &user, nil
}

// Refresh extends the record's expiry without touching its value. Refreshing
// an absent subject yields ErrSessionNotFound; callers treat that as "not
// authenticated", never as an error to surface.
func (s *SessionStore) Refresh(ctx context.Context, subject string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, sessionKey(subject), ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes the record for subject and reports whether one existed.
// Deleting an absent subject is a no-op returning false, never an error.
func (s *SessionStore) Delete(ctx context.Context, subject string) (bool, error) {
	n, err := s.client.Del(ctx, sessionKey(subject)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return n > 0, nil
}
