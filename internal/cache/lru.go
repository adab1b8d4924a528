// Package cache keeps recently fetched pack assets in memory.
package cache

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// DefaultMaxSize is the entry limit used when none is configured
const DefaultMaxSize = 10000

// node represents a node in the doubly-linked list
type node struct {
	key   string
	value []byte
	prev  *node
	next  *node
}

// LRUCache implements domain.CacheManager with least-recently-used eviction.
// It is bounded both by entry count and, when maxBytes is positive, by the
// total number of cached bytes.
type LRUCache struct {
	maxSize  int
	maxBytes int64
	size     int
	bytes    int64

	// Doubly-linked list for LRU ordering
	head *node
	tail *node

	cache map[string]*node
	mutex sync.RWMutex

	hits      int64
	misses    int64
	evictions int64

	lastHealthCheck time.Time
	healthMutex     sync.RWMutex
}

// NewLRUCache creates a cache holding at most maxSize entries and maxBytes
// bytes. A maxBytes of zero disables the byte bound.
func NewLRUCache(maxSize int, maxBytes int64) *LRUCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if maxBytes < 0 {
		maxBytes = 0
	}

	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUCache{
		maxSize:         maxSize,
		maxBytes:        maxBytes,
		head:            head,
		tail:            tail,
		cache:           make(map[string]*node),
		lastHealthCheck: time.Now(),
	}
}

// Get returns a copy of the cached bytes and marks the entry as recently used
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	found, exists := c.cache[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.moveToFront(found)
	atomic.AddInt64(&c.hits, 1)

	return bytes.Clone(found.value), true
}

// Set stores a copy of data under key. Values larger than the byte bound
// are not cached.
func (c *LRUCache) Set(key string, data []byte) {
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	value := bytes.Clone(data)
	if value == nil {
		value = []byte{}
	}

	if existing, exists := c.cache[key]; exists {
		c.bytes += int64(len(value)) - int64(len(existing.value))
		existing.value = value
		c.moveToFront(existing)
	} else {
		newNode := &node{key: key, value: value}
		c.addToFront(newNode)
		c.cache[key] = newNode
		c.size++
		c.bytes += int64(len(value))
	}

	for c.size > c.maxSize || (c.maxBytes > 0 && c.bytes > c.maxBytes) {
		c.evictLRU()
	}
}

// Invalidate removes a specific key from the cache
func (c *LRUCache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, exists := c.cache[key]; exists {
		c.removeNode(existing)
		delete(c.cache, key)
		c.size--
		c.bytes -= int64(len(existing.value))
	}
}

// Clear removes all entries from the cache
func (c *LRUCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head

	c.cache = make(map[string]*node)
	c.size = 0
	c.bytes = 0

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns current cache statistics
func (c *LRUCache) Stats() domain.CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses

	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return domain.CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.size,
		MaxSize:   c.maxSize,
		Bytes:     c.bytes,
		MaxBytes:  c.maxBytes,
		HitRatio:  hitRatio,
	}
}

// HealthCheck performs a health check on the cache
func (c *LRUCache) HealthCheck(ctx context.Context) domain.HealthStatus {
	c.healthMutex.Lock()
	defer c.healthMutex.Unlock()

	now := time.Now()
	c.lastHealthCheck = now

	stats := c.Stats()

	status := domain.HealthStatusHealthy
	message := "Asset cache is operating normally"
	details := map[string]any{
		"size":        stats.Size,
		"max_size":    stats.MaxSize,
		"bytes":       stats.Bytes,
		"max_bytes":   stats.MaxBytes,
		"evictions":   stats.Evictions,
		"utilization": stats.Utilization(),
		"hit_ratio":   stats.HitRatio,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
	}

	if stats.Utilization() >= 0.9 {
		status = domain.HealthStatusDegraded
		message = "Asset cache is near capacity"
		details["warning"] = "Cache utilization above 90%"
	}

	if stats.HitRatio < 0.5 && stats.Hits+stats.Misses > 100 {
		if status == domain.HealthStatusHealthy {
			status = domain.HealthStatusDegraded
			message = "Low cache hit ratio"
		}
		details["hit_ratio_warning"] = "Hit ratio below 50%"
	}

	return domain.HealthStatus{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: now,
	}
}

func (c *LRUCache) moveToFront(n *node) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRUCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUCache) removeNode(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// evictLRU removes the least recently used entry
func (c *LRUCache) evictLRU() {
	if c.tail.prev == c.head {
		return
	}

	lru := c.tail.prev
	c.removeNode(lru)
	delete(c.cache, lru.key)
	c.size--
	c.bytes -= int64(len(lru.value))
	atomic.AddInt64(&c.evictions, 1)
}

var _ domain.CacheManager = (*LRUCache)(nil)
