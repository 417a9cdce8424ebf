// Package store provides in-memory memoization of URL classifications using a
// Bloom filter and an LRU cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"foxypack/pkg/foxypack"
)

// AnalysisCache decorates an analyzer and remembers its successful
// classifications. Declinations and errors are never cached.
//
// The Bloom filter answers "definitely never cached" without touching the LRU.
// Evicted URLs stay in the filter until it has absorbed bloomRebuildFactor
// times its capacity, at which point it is rebuilt from the LRU keys.
type AnalysisCache struct {
	next              foxypack.Analyzer
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, *foxypack.Analysis]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
	hits              uint64
	misses            uint64
	bloomAdds         int
}

const bloomRebuildFactor = 2

// Stats contains cache counters.
type Stats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewAnalysisCache wraps next with a cache holding up to capacity classifications.
func NewAnalysisCache(next foxypack.Analyzer, capacity int, falsePositiveRate float64) (*AnalysisCache, error) {
	if next == nil {
		return nil, foxypack.NewUsage("analysis cache needs an analyzer to wrap")
	}
	if capacity <= 0 {
		return nil, foxypack.NewConfiguration("analysis cache capacity must be positive")
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		return nil, foxypack.NewConfiguration("analysis cache false positive rate must be between 0 and 1")
	}

	lruCache, err := lru.New[string, *foxypack.Analysis](capacity)
	if err != nil {
		return nil, foxypack.WrapError(foxypack.KindConfiguration, "", err)
	}

	return &AnalysisCache{
		next:              next,
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		lru:               lruCache,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}, nil
}

// Name reports the wrapped analyzer's name.
func (c *AnalysisCache) Name() string {
	return foxypack.HandlerName(c.next)
}

// Analyze returns the cached classification of url or asks the wrapped analyzer.
func (c *AnalysisCache) Analyze(url string) (*foxypack.Analysis, error) {
	if analysis, ok := c.lookup(url); ok {
		return analysis, nil
	}

	analysis, err := c.next.Analyze(url)
	if err != nil {
		return nil, err
	}
	if analysis != nil {
		c.store(url, analysis)
	}
	return analysis, nil
}

func (c *AnalysisCache) lookup(url string) (*foxypack.Analysis, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.bloom.TestString(url) {
		if analysis, ok := c.lru.Get(url); ok {
			c.hits++
			return analysis, true
		}
	}
	c.misses++
	return nil, false
}

func (c *AnalysisCache) store(url string, analysis *foxypack.Analysis) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.lru.Add(url, analysis)
	c.bloom.AddString(url)
	c.bloomAdds++

	if c.bloomAdds >= bloomRebuildFactor*c.capacity {
		c.rebuildBloom()
	}
}

// rebuildBloom drops evicted URLs from the filter. Callers hold the write lock.
func (c *AnalysisCache) rebuildBloom() {
	c.bloom = bloom.NewWithEstimates(uint(c.capacity), c.falsePositiveRate)
	keys := c.lru.Keys()
	for _, key := range keys {
		c.bloom.AddString(key)
	}
	c.bloomAdds = len(keys)
}

// Size returns the number of cached classifications.
func (c *AnalysisCache) Size() int {
	return c.lru.Len()
}

// Stats returns the cache counters.
func (c *AnalysisCache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return Stats{
		Size:   c.lru.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// Clear drops every cached classification and resets the counters.
func (c *AnalysisCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.bloom = bloom.NewWithEstimates(uint(c.capacity), c.falsePositiveRate)
	c.lru.Purge()
	c.hits = 0
	c.misses = 0
	c.bloomAdds = 0
}
