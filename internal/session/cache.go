package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// SnapshotTTL bounds how long a verified session snapshot may be reused
// before a fresh provider query is required.
const SnapshotTTL = 10 * time.Minute

// Cache stores short-lived, non-sensitive session snapshots keyed by user
// id. Tokens and credentials never enter the cache.
type Cache interface {
	Get(ctx context.Context, userID string) (domain.Session, bool, error)
	Set(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, userID string) error
}

type snapshotRecord struct {
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	VerifiedAt  time.Time   `json:"verified_at"`
}

// redisCache is the Redis-backed snapshot cache.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a Redis client as a snapshot cache.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func cacheKey(userID string) string {
	return "niko:session:" + userID
}

func (c *redisCache) Get(ctx context.Context, userID string) (domain.Session, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Guest(), false, nil
		}
		return domain.Guest(), false, err
	}

	var rec snapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Guest(), false, err
	}
	return domain.Session{
		UserID:        rec.UserID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		Role:          rec.Role,
		Authenticated: true,
		VerifiedAt:    rec.VerifiedAt,
	}, true, nil
}

func (c *redisCache) Set(ctx context.Context, session domain.Session) error {
	if !session.Authenticated || session.UserID == "" {
		return nil
	}
	raw, err := json.Marshal(snapshotRecord{
		UserID:      session.UserID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Role:        session.Role,
		VerifiedAt:  session.VerifiedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(session.UserID), raw, SnapshotTTL).Err()
}

func (c *redisCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, cacheKey(userID)).Err()
}

// memoryCache backs tests and single-node deployments without Redis.
type memoryCache struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemoryCache returns an in-process snapshot cache.
func NewMemoryCache() Cache {
	return &memoryCache{sessions: make(map[string]domain.Session)}
}

func (c *memoryCache) Get(_ context.Context, userID string) (domain.Session, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, ok := c.sessions[userID]
	if !ok {
		return domain.Guest(), false, nil
	}
	return session, true, nil
}

func (c *memoryCache) Set(_ context.Context, session domain.Session) error {
	if !session.Authenticated || session.UserID == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.UserID] = session
	return nil
}

func (c *memoryCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
	return nil
}
