// Package draft stores a caller's in-progress message as an opaque JSON
// blob in redis, keyed by the caller's national identifier, with a TTL.
// Drafts are convenience state only; nothing in the submission pipeline
// reads them.
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mellomlagring_"

// Store is the redis surface the service needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service persists drafts with a bounded lifetime.
type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

// Get returns the caller's draft, or "" when none exists.
func (s *Service) Get(ctx context.Context, nationalID string) (string, error) {
	value, err := s.store.Get(ctx, keyPrefix+nationalID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get draft: %w", err)
	}
	return value, nil
}

// Set stores the draft, resetting its TTL.
func (s *Service) Set(ctx context.Context, nationalID, draft string) error {
	if err := s.store.Set(ctx, keyPrefix+nationalID, draft, s.ttl).Err(); err != nil {
		return fmt.Errorf("set draft: %w", err)
	}
	return nil
}

// Delete removes the caller's draft; deleting a missing draft is not an error.
func (s *Service) Delete(ctx context.Context, nationalID string) error {
	if err := s.store.Del(ctx, keyPrefix+nationalID).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
