package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vims/internal/auth/models"
	"vims/pkg/platform/sentinel"
)

// RedisSessionStore persists sessions in Redis with TTL-based expiry. The key
// TTL tracks the session expiry so revoked and expired sessions age out on
// their own.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return "vims:session:" + sessionID
}

func (s *RedisSessionStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", sentinel.ErrInvalidState)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) FindByID(ctx context.Context, sessionID string) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	session, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Revoked = true
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// Keep the revoked record until its natural expiry so liveness checks
	// keep answering false instead of not-found.
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
