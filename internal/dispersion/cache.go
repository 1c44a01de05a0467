package dispersion

import (
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"
)

// resultCache memoizes detailed results by resolved scenario. The scenario
// struct is comparable and NaN-free after normalization, so it is used
// directly as the LRU key.
type resultCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{cache: lru.New(maxEntries)}
}

func (c *resultCache) get(s scenario) (DetailedCalculationResults, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(s)
	if !ok {
		return DetailedCalculationResults{}, false
	}
	return cloneResults(v.(DetailedCalculationResults)), true
}

func (c *resultCache) put(s scenario, r DetailedCalculationResults) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(s, cloneResults(r))
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// cloneResults copies the slice fields so cached values cannot be mutated
// through a returned result.
func cloneResults(r DetailedCalculationResults) DetailedCalculationResults {
	r.ConcentrationProfile = slices.Clone(r.ConcentrationProfile)
	r.RecommendedSensorLocations = slices.Clone(r.RecommendedSensorLocations)
	return r
}
