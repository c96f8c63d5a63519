package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned for a bad password or an unknown/expired token.
var ErrUnauthorized = errors.New("unauthorized")

// SessionStore keeps admin session tokens in Redis with a TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore connects to Redis and verifies the connection.
func NewSessionStore(addr, password string, db int, ttl time.Duration) (*SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &SessionStore{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

// Create issues a fresh session token.
func (s *SessionStore) Create(ctx context.Context) (token string, expiresAt time.Time, err error) {
	token = uuid.New().String()
	expiresAt = time.Now().Add(s.ttl)

	if err := s.rdb.Set(ctx, sessionKey(token), "1", s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}
	return token, expiresAt, nil
}

// Validate checks whether the token names a live session.
func (s *SessionStore) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	n, err := s.rdb.Exists(ctx, sessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

// Revoke removes a session token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
