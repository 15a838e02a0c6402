// Package redis backs the durable session envelope with a single Redis
// key, and owns connection setup.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// sessionKey is the one durable-storage key for the session envelope.
const sessionKey = "gateway:session"

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a
// ping. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// SessionStorage implements ports.SessionStorage on top of Redis: the
// serialized {state: {token, user}} envelope lives under one key.
type SessionStorage struct {
	client *redis.Client
}

// NewSessionStorage wraps an established Redis client.
func NewSessionStorage(client *redis.Client) *SessionStorage {
	return &SessionStorage{client: client}
}

// Load reads the persisted envelope. A missing key is (nil, nil);
// corruption is surfaced as an error for the caller to resolve to an
// unauthenticated session.
func (s *SessionStorage) Load(ctx context.Context) (*domain.SessionEnvelope, error) {
	raw, err := s.client.Get(ctx, sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var env domain.SessionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode session envelope: %w", err)
	}
	return &env, nil
}

// Save persists the envelope. No TTL: the token is opaque and its expiry
// belongs to the backend; a stale token simply fails with 401 on next use.
func (s *SessionStorage) Save(ctx context.Context, env domain.SessionEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode session envelope: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the persisted envelope. Clearing an absent key is a
// no-op, matching logout idempotence.
func (s *SessionStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
