// Package audio provides the bounded pronunciation cache and the synthesis
// collaborator contract. Synthesis runs off the frame loop; the cache is the
// single handoff point between synthesis goroutines and the session tick
// path, guarded by one mutex.
package audio

import (
	"context"
	"strings"
	"sync"
)

// Status reports the outcome of a cache lookup.
type Status int

const (
	// Miss means the label was unknown; a pending placeholder was inserted
	// and an asynchronous synthesis request dispatched.
	Miss Status = iota
	// Pending means synthesis for the label is still in flight.
	Pending
	// Ready means a playable clip was returned.
	Ready
)

// Synthesizer is the external text-to-speech collaborator. Implementations
// must honor ctx cancellation. A returned error is delivered to nobody: the
// cache entry simply stays pending, and the missing pronunciation is a
// silent omission, never a dialog.
type Synthesizer interface {
	Synthesize(ctx context.Context, label string) (Clip, error)
}

// entry is one cached pronunciation. lastAccess is a monotonic counter, not
// wall time, so LRU ordering is deterministic.
type entry struct {
	clip       Clip
	ready      bool
	lastAccess uint64
}

// Cache is a bounded least-recently-used mapping from a normalized spoken
// label to a pronunciation clip, populated asynchronously by a Synthesizer.
// Each session owns exactly one cache; nothing here is shared or global.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*entry
	clock    uint64
	synth    Synthesizer
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool

	hits, misses uint64
}

// NewCache creates a cache holding at most capacity entries. synth may be
// nil, in which case misses insert pending placeholders that only an
// explicit Fulfill can complete.
func NewCache(capacity int, synth Synthesizer) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*entry, capacity),
		synth:    synth,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Normalize maps a spoken label to its cache key: lowercase, trimmed.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// GetOrRequest looks up the pronunciation for label. Ready returns the clip
// and refreshes its recency. Pending means synthesis is in flight. Miss
// means a placeholder was inserted and a request dispatched; the call
// returns immediately either way and never blocks the frame loop.
func (c *Cache) GetOrRequest(label string) (Clip, Status) {
	key := Normalize(label)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Clip{}, Miss
	}

	if e, ok := c.entries[key]; ok {
		if e.ready {
			c.clock++
			e.lastAccess = c.clock
			c.hits++
			return e.clip, Ready
		}
		return Clip{}, Pending
	}

	c.misses++
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.clock++
	c.entries[key] = &entry{lastAccess: c.clock}

	if c.synth != nil {
		go c.request(key)
	}
	return Clip{}, Miss
}

// request runs on its own goroutine: it asks the collaborator for a clip and
// delivers it through Fulfill. A synthesis error leaves the entry pending.
func (c *Cache) request(key string) {
	clip, err := c.synth.Synthesize(c.ctx, key)
	if err != nil {
		return
	}
	c.Fulfill(key, clip)
}

// Fulfill delivers a synthesized clip. If the label's pending entry still
// exists it becomes ready; if the entry was evicted, already fulfilled, or
// the cache closed, the result is evaluated and dropped harmlessly.
func (c *Cache) Fulfill(label string, clip Clip) {
	key := Normalize(label)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	e, ok := c.entries[key]
	if !ok || e.ready {
		return
	}
	e.clip = clip
	e.ready = true
}

// evictLocked removes the least-recently-used entry to make room. Ready
// entries go first; pending entries are only evicted when every entry is
// pending (the hard capacity ceiling), in which case the in-flight result
// will be discarded on arrival by the Fulfill existence check.
func (c *Cache) evictLocked() {
	victim := ""
	var victimAccess uint64
	victimReady := false

	for key, e := range c.entries {
		better := false
		switch {
		case victim == "":
			better = true
		case e.ready && !victimReady:
			better = true
		case e.ready == victimReady && e.lastAccess < victimAccess:
			better = true
		}
		if better {
			victim = key
			victimAccess = e.lastAccess
			victimReady = e.ready
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Len returns the current entry count. Never exceeds the capacity.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether a ready entry exists for label, without touching
// its recency.
func (c *Cache) Contains(label string) bool {
	key := Normalize(label)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.ready
}

// Stats returns lifetime hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Close cancels in-flight synthesis and drops every entry. Late Fulfill
// calls after Close are no-ops. Safe to call more than once.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	clear(c.entries)
}
