// Package cache provides a small thread-safe LRU with TTL, used to
// memoise retrieval results per query.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type item struct {
	key       string
	value     string
	expiresAt time.Time
}

// Cache is an LRU of string values with a fixed capacity and TTL.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	index    map[string]*list.Element
	order    *list.List
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 128
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		index:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return "", false
	}
	it := elem.Value.(*item)
	if time.Now().After(it.expiresAt) {
		c.order.Remove(elem)
		delete(c.index, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return it.value, true
}

func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(c.ttl)
	if elem, ok := c.index[key]; ok {
		c.order.MoveToFront(elem)
		it := elem.Value.(*item)
		it.value = value
		it.expiresAt = expires
		return
	}
	elem := c.order.PushFront(&item{key: key, value: value, expiresAt: expires})
	c.index[key] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*item).key)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Key hashes arbitrary text into a stable cache key.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
