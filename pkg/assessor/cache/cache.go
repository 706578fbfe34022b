// Package cache provides thread-safe TTL caching of carbon-intensity
// readings keyed by location.
package cache

import (
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/electricitymaps"
)

// Cache provides thread-safe caching of carbon-intensity data with TTL.
type Cache struct {
	data    map[string]*cacheEntry
	mutex   sync.RWMutex
	ttl     time.Duration
	maxAge  time.Duration
	stopCh  chan struct{}
	metrics *metrics
}

type cacheEntry struct {
	data      *electricitymaps.CarbonIntensityData
	timestamp time.Time
	hits      int64
}

type metrics struct {
	hits   int64
	misses int64
	mutex  sync.RWMutex
}

// New creates a new cache instance and starts its cleanup goroutine.
func New(ttl time.Duration, maxAge time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}

	c := &Cache{
		data: make(map[string]*cacheEntry),
		// Freshness window checked at get time.
		ttl: ttl,
		// Age at which unaccessed entries are removed.
		maxAge:  maxAge,
		stopCh:  make(chan struct{}),
		metrics: &metrics{},
	}

	go c.cleanup()

	return c
}

// Get retrieves data from cache if still fresh.
func (c *Cache) Get(key string) (*electricitymaps.CarbonIntensityData, bool) {
	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		c.recordMiss()
		return nil, false
	}

	c.mutex.Lock()
	entry.hits++
	c.recordHit()
	c.mutex.Unlock()

	return entry.data, true
}

// Set stores data in cache.
func (c *Cache) Set(key string, data *electricitymaps.CarbonIntensityData) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		data:      data,
		timestamp: time.Now(),
	}

	klog.V(4).InfoS("Cached carbon intensity data",
		"key", key,
		"carbonIntensity", data.CarbonIntensity,
		"timestamp", data.Timestamp)
}

// GetMetrics returns cache performance counters.
func (c *Cache) GetMetrics() (hits, misses int64) {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()
	return c.metrics.hits, c.metrics.misses
}

func (c *Cache) recordHit() {
	c.metrics.mutex.Lock()
	c.metrics.hits++
	c.metrics.mutex.Unlock()
}

func (c *Cache) recordMiss() {
	c.metrics.mutex.Lock()
	c.metrics.misses++
	c.metrics.mutex.Unlock()
}

// cleanup periodically removes expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		age := now.Sub(entry.timestamp)
		if age > c.maxAge {
			delete(c.data, key)
			klog.V(4).InfoS("Removed expired cache entry",
				"key", key,
				"age", age.String(),
				"hits", entry.hits)
		}
	}
}

// Size returns the number of entries in the cache.
func (c *Cache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	close(c.stopCh)
}
