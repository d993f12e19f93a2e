package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager tracks live sessions in Redis so that issued tokens can be
// revoked before expiry. Lifecycle: a session is registered on login,
// refreshed on every verification, and torn down on sign-out.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

// Register creates a new session entry and returns its ID.
func (sm *SessionManager) Register(ctx context.Context, userID uuid.UUID) (string, error) {
	sid := uuid.NewString()
	if err := sm.client.Set(ctx, sm.key(sid), userID.String(), sm.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Active reports whether the session is still live, sliding its expiry.
func (sm *SessionManager) Active(ctx context.Context, sid string) (bool, error) {
	err := sm.client.Expire(ctx, sm.key(sid), sm.ttl).Err()
	if err != nil {
		return false, err
	}
	n, err := sm.client.Exists(ctx, sm.key(sid)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke tears the session down.
func (sm *SessionManager) Revoke(ctx context.Context, sid string) error {
	if err := sm.client.Del(ctx, sm.key(sid)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

func (sm *SessionManager) key(sid string) string {
	return "session:" + sid
}
