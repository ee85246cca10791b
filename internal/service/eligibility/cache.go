package eligibility

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

// scanCacheKey holds the most recent full eligibility scan. The scan walks
// every dormant candidate and their orders, and the admin grid re-requests
// it on every page load.
const scanCacheKey = "cleanup:eligible_scan"

// ScanCache caches eligibility scan results in Redis with a short TTL.
// Cache failures are logged and otherwise ignored: a broken cache must
// never make the scan itself fail.
type ScanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScanCache creates a scan cache with the given TTL.
func NewScanCache(client *redis.Client, ttl time.Duration) *ScanCache {
	return &ScanCache{client: client, ttl: ttl}
}

func (c *ScanCache) get(ctx context.Context) ([]domain.EligibilityResult, bool) {
	val, err := c.client.Get(ctx, scanCacheKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("eligibility cache read failed", "error", err)
		return nil, false
	}
	var results []domain.EligibilityResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		logger.Warn("eligibility cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return results, true
}

func (c *ScanCache) set(ctx context.Context, results []domain.EligibilityResult) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, scanCacheKey, data, c.ttl).Err(); err != nil {
		logger.Warn("eligibility cache write failed", "error", err)
	}
}

// Invalidate drops the cached scan. Called after any live cleanup action
// so the next scan reflects the mutated store.
func (c *ScanCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, scanCacheKey).Err(); err != nil {
		logger.Warn("eligibility cache invalidation failed", "error", err)
	}
}

// CachedEligibleCustomers returns the cached scan when fresh, falling back
// to a full scan (and repopulating the cache) otherwise. Without an
// attached cache it is equivalent to EligibleCustomers.
func (s *Service) CachedEligibleCustomers(ctx context.Context) ([]domain.EligibilityResult, error) {
	if s.cache == nil {
		return s.EligibleCustomers(ctx)
	}
	if results, ok := s.cache.get(ctx); ok {
		return results, nil
	}
	results, err := s.EligibleCustomers(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, results)
	return results, nil
}

// InvalidateScan drops the cached scan if a cache is attached.
func (s *Service) InvalidateScan(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
