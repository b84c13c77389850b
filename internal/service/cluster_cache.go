package service

import (
	"sync"

	"github.com/jengzang/opportunity-map-go/internal/models"
)

// clusterCache memoizes cluster responses for one dataset version.
// Oldest entries are evicted first once capacity is reached.
type clusterCache struct {
	mu       sync.Mutex
	capacity int
	version  uint64
	entries  map[string]*models.ClusterResponse
	order    []string
}

func newClusterCache(capacity int) *clusterCache {
	return &clusterCache{
		capacity: capacity,
		entries:  make(map[string]*models.ClusterResponse),
	}
}

func (c *clusterCache) get(version uint64, key string) (*models.ClusterResponse, bool) {
	if c.capacity <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return nil, false
	}
	resp, ok := c.entries[key]
	return resp, ok
}

func (c *clusterCache) put(version uint64, key string, resp *models.ClusterResponse) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case version < c.version:
		// computed against data that has since changed
		return
	case version > c.version:
		c.version = version
		c.entries = make(map[string]*models.ClusterResponse)
		c.order = c.order[:0]
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = resp
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = resp
	c.order = append(c.order, key)
}

func (c *clusterCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
