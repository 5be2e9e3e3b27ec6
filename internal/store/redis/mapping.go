package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

const (
	// PositiveTTL bounds staleness of cached mappings across instances.
	PositiveTTL = 300 * time.Second
	// NegativeTTL bounds how long an unknown host stays "known absent".
	NegativeTTL = 60 * time.Second
)

// Record is the shared-cache representation of one host lookup. Either
// Mapping is set or NotFound is true; CachedAtMs records when the
// lookup was materialized.
type Record struct {
	Mapping    *domain.HostMapping `json:"mapping,omitempty"`
	NotFound   bool                `json:"notFound,omitempty"`
	CachedAtMs int64               `json:"cachedAtMs"`
}

// Store handles shared-cache operations for host mappings.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed shared cache store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// GetMapping retrieves the cached record for host. A plain cache miss
// returns (nil, nil); transport and decoding failures return an error
// so callers can degrade to the next tier.
func (s *Store) GetMapping(ctx context.Context, host string) (*Record, error) {
	data, err := s.client.Get(ctx, MappingKey(host)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached mapping: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached mapping: %w", err)
	}
	return &rec, nil
}

// SaveMapping writes a positive record through to the shared cache.
func (s *Store) SaveMapping(ctx context.Context, mapping *domain.HostMapping) error {
	rec := Record{Mapping: mapping, CachedAtMs: time.Now().UnixMilli()}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping record: %w", err)
	}
	if err := s.client.Set(ctx, MappingKey(mapping.Host), data, PositiveTTL).Err(); err != nil {
		return fmt.Errorf("failed to save mapping record: %w", err)
	}
	return nil
}

// SaveNegative records that host has no mapping, for NegativeTTL. The
// write is create-only: negatives are scheduled off the response path,
// and a late one must never clobber a control-plane write-through that
// landed in between.
func (s *Store) SaveNegative(ctx context.Context, host string) error {
	rec := Record{NotFound: true, CachedAtMs: time.Now().UnixMilli()}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal negative record: %w", err)
	}
	if err := s.client.SetNX(ctx, MappingKey(host), data, NegativeTTL).Err(); err != nil {
		return fmt.Errorf("failed to save negative record: %w", err)
	}
	return nil
}

// DeleteMapping removes the cached record for host. Used by the control
// plane so mutations become visible to other instances within the hot
// tier TTL rather than the shared tier TTL.
func (s *Store) DeleteMapping(ctx context.Context, host string) error {
	if err := s.client.Del(ctx, MappingKey(host)).Err(); err != nil {
		return fmt.Errorf("failed to delete mapping record: %w", err)
	}
	return nil
}

// Healthcheck pings the underlying client, for readiness probes.
func (s *Store) Healthcheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
