// Package cache memoises simulation results for repeated analyses of the
// same fixture.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/true-odds/internal/metrics"
	"github.com/yourusername/true-odds/internal/simulation"
)

// Key identifies a reproducible simulation run
type Key struct {
	Distribution   simulation.Distribution
	Iterations     int
	HomeRate       float64
	AwayRate       float64
	Dispersion     float64
	FirstHalfShare float64
	BatchSize      int
	Seed           int64
}

// KeyFor derives the cache key of a config. Runs with seed 0 draw a fresh
// seed each time and are never cached, so ok is false for them.
func KeyFor(cfg simulation.Config) (Key, bool) {
	if cfg.Seed == 0 {
		return Key{}, false
	}
	home, away := cfg.EffectiveRates()
	return Key{
		Distribution:   cfg.Distribution,
		Iterations:     cfg.Iterations,
		HomeRate:       home,
		AwayRate:       away,
		Dispersion:     cfg.Dispersion,
		FirstHalfShare: cfg.FirstHalfShare,
		BatchSize:      cfg.BatchSize,
		Seed:           cfg.Seed,
	}, true
}

// String returns string representation of cache key
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%g:%g:%g:%g:%d:%d",
		k.Distribution, k.Iterations, k.HomeRate, k.AwayRate, k.Dispersion, k.FirstHalfShare, k.BatchSize, k.Seed)
}

// SimulationCache provides in-memory caching for simulation results
type SimulationCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// New creates a simulation cache. A zero cleanup interval defaults to twice
// the ttl; a maxSize of 0 means unbounded.
func New(ttl, cleanup time.Duration, maxSize int) *SimulationCache {
	if cleanup <= 0 {
		cleanup = ttl * 2
	}
	return &SimulationCache{
		cache:   gocache.New(ttl, cleanup),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached result
func (sc *SimulationCache) Get(key Key) (*simulation.Result, bool) {
	if item, found := sc.cache.Get(key.String()); found {
		if result, ok := item.(*simulation.Result); ok {
			sc.hitCount.Add(1)
			sc.updateMetrics(true)
			return result, true
		}
	}
	sc.missCount.Add(1)
	sc.updateMetrics(false)
	return nil, false
}

// Set stores a result. It reports false when the cache is full even after
// expired entries are purged.
func (sc *SimulationCache) Set(key Key, result *simulation.Result) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.maxSize > 0 && sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
		if sc.cache.ItemCount() >= sc.maxSize {
			return false
		}
	}

	sc.cache.Set(key.String(), result, sc.ttl)
	metrics.UpdateCacheStats(sc.ratio(), sc.cache.ItemCount())
	return true
}

// Invalidate removes every entry simulated with the given distribution
func (sc *SimulationCache) Invalidate(distribution simulation.Distribution) int {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	prefix := string(distribution) + ":"
	removed := 0
	for k := range sc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			sc.cache.Delete(k)
			removed++
		}
	}
	return removed
}

// Clear flushes the entire cache
func (sc *SimulationCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount.Store(0)
	sc.missCount.Store(0)
}

// Stats returns cache statistics
func (sc *SimulationCache) Stats() (hits, misses uint64, ratio float64) {
	hits = sc.hitCount.Load()
	misses = sc.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}

// ItemCount returns the number of items in cache
func (sc *SimulationCache) ItemCount() int {
	return sc.cache.ItemCount()
}

func (sc *SimulationCache) ratio() float64 {
	_, _, ratio := sc.Stats()
	return ratio
}

func (sc *SimulationCache) updateMetrics(hit bool) {
	metrics.RecordCacheLookup(hit)
	metrics.UpdateCacheStats(sc.ratio(), sc.cache.ItemCount())
}
