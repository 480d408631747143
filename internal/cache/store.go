// Package cache provides the Redis-backed result store that wraps the
// vendor pipeline. Cache errors are soft: a broken cache degrades to a
// vendor fan-out, never to a failed request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/models"
)

const keyPrefix = "product:"

// Store caches Results by SKU with a fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log *logging.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewStore creates a Store on an existing Redis client.
func NewStore(rdb *redis.Client, ttl time.Duration, log *logging.Logger) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
		log: log.WithComponent("cache"),
	}
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get returns the cached Result for a SKU, or false on a miss. Transport
// errors count as misses.
func (s *Store) Get(ctx context.Context, sku string) (*models.Result, bool) {
	data, err := s.rdb.Get(ctx, keyPrefix+sku).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Error("cache get failed", map[string]interface{}{
				"sku": sku, "error": err.Error(),
			})
		}
		s.misses.Add(1)
		return nil, false
	}

	var res models.Result
	if err := json.Unmarshal(data, &res); err != nil {
		s.log.Error("cache entry corrupt", map[string]interface{}{
			"sku": sku, "error": err.Error(),
		})
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	return &res, true
}

// Set stores a Result under its SKU with the configured TTL. OUT_OF_STOCK
// results are cached the same as IN_STOCK ones.
func (s *Store) Set(ctx context.Context, sku string, res models.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		s.log.Error("cache marshal failed", map[string]interface{}{
			"sku": sku, "error": err.Error(),
		})
		return
	}
	if err := s.rdb.Set(ctx, keyPrefix+sku, data, s.ttl).Err(); err != nil {
		s.log.Error("cache set failed", map[string]interface{}{
			"sku": sku, "error": err.Error(),
		})
	}
}

// Delete removes the cached entry for a SKU.
func (s *Store) Delete(ctx context.Context, sku string) {
	if err := s.rdb.Del(ctx, keyPrefix+sku).Err(); err != nil {
		s.log.Error("cache delete failed", map[string]interface{}{
			"sku": sku, "error": err.Error(),
		})
	}
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// MetricsSnapshot is a point-in-time view of cache effectiveness.
type MetricsSnapshot struct {
	TotalRequests uint64  `json:"total_requests"`
	Hits          uint64  `json:"cache_hits"`
	Misses        uint64  `json:"cache_misses"`
	HitRate       float64 `json:"hit_rate"`
}

// Metrics returns hit/miss counters since process start.
func (s *Store) Metrics() MetricsSnapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()
	total := hits + misses
	snap := MetricsSnapshot{TotalRequests: total, Hits: hits, Misses: misses}
	if total > 0 {
		snap.HitRate = float64(hits) / float64(total)
	}
	return snap
}
