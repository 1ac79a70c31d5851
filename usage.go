package assistant

import (
	"sync"
	"sync/atomic"
)

// Counters tracks per-caller usage with atomic increments. An injected
// instance replaces process-wide globals so tests stay isolated.
type Counters struct {
	counts sync.Map // string -> *atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) Add(key string, delta int64) int64 {
	v, _ := c.counts.LoadOrStore(key, new(atomic.Int64))
	return v.(*atomic.Int64).Add(delta)
}

func (c *Counters) Get(key string) int64 {
	v, ok := c.counts.Load(key)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}
