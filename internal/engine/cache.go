package engine

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/b0yank/betting-recommender/internal/metrics"
	"github.com/b0yank/betting-recommender/internal/models"
)

// CacheKey identifies one fixture estimate. A rescheduled fixture keeps its
// id but gets a new key.
type CacheKey struct {
	GameID     int64
	HomeTeamID int64
	AwayTeamID int64
	Date       time.Time
	UseForm    bool
}

// NewCacheKey builds the key of a fixture estimate
func NewCacheKey(game *models.Game, useForm bool) CacheKey {
	return CacheKey{
		GameID:     game.ID,
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,
		Date:       game.Date,
		UseForm:    useForm,
	}
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%t", k.GameID, k.HomeTeamID, k.AwayTeamID, k.Date.Unix(), k.UseForm)
}

// EstimateCache holds fixture estimates between rating updates. Entries are
// only valid for the rating state they were computed from, so the engine
// flushes the cache whenever an update commits.
type EstimateCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewEstimateCache creates a new estimate cache
func NewEstimateCache(ttl time.Duration, maxSize int) *EstimateCache {
	return &EstimateCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached estimate
func (ec *EstimateCache) Get(key CacheKey) (*models.OutcomeEstimate, bool) {
	result, found := ec.cache.Get(key.String())
	est, ok := result.(*models.OutcomeEstimate)
	hit := found && ok

	ec.mu.Lock()
	if hit {
		ec.hitCount++
	} else {
		ec.missCount++
	}
	ratio := ec.ratioLocked()
	ec.mu.Unlock()

	metrics.UpdateEstimateCacheHitRatio(ratio)
	if !hit {
		return nil, false
	}
	return est, true
}

// Set stores an estimate. A full cache first drops expired items and skips
// the write if that frees nothing.
func (ec *EstimateCache) Set(key CacheKey, est *models.OutcomeEstimate) {
	if ec.cache.ItemCount() >= ec.maxSize {
		ec.cache.DeleteExpired()
		if ec.cache.ItemCount() >= ec.maxSize {
			return
		}
	}
	ec.cache.Set(key.String(), est, ec.ttl)
}

// Clear drops every cached estimate. Hit statistics are kept.
func (ec *EstimateCache) Clear() {
	ec.cache.Flush()
}

// Stats returns cache statistics
func (ec *EstimateCache) Stats() (hits, misses uint64, ratio float64) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.hitCount, ec.missCount, ec.ratioLocked()
}

func (ec *EstimateCache) ratioLocked() float64 {
	total := ec.hitCount + ec.missCount
	if total == 0 {
		return 0
	}
	return float64(ec.hitCount) / float64(total)
}

// ItemCount returns the number of items in cache
func (ec *EstimateCache) ItemCount() int {
	return ec.cache.ItemCount()
}
