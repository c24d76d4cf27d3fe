// Package ratelimit implements per-client fixed-window request throttling.
//
// Fixed window: each key gets a counter that resets every window. Compared to
// a token bucket this allows short bursts at window boundaries, which is
// acceptable here — the requirement is best-effort abuse throttling, not a
// precise global quota. State is process-local by design.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time // when the current window ends
}

// Store is the rate-limit state abstraction. The in-memory implementation
// below serves single-instance deployments; a multi-instance deployment can
// plug in a shared store without touching the middleware.
type Store interface {
	Check(key string) Decision
}

type entry struct {
	count       int
	windowStart time.Time
}

// MemoryStore is a mutex-protected in-process Store.
// sync.Mutex is the right tool here: a shared map with simple read/write is
// cleaner with a lock than with channels.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	limit   int
	window  time.Duration
	now     func() time.Time // injectable clock for tests
}

// NewMemoryStore creates a store allowing `limit` requests per `window` per key.
func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check counts a request against the key's current window.
// The first request of a window (or of a new key) resets the counter to 1.
// Once the counter reaches the limit, further requests in the window are denied
// with Remaining 0. Expired entries are swept opportunistically on every call,
// so no background timer goroutine is needed to bound memory.
func (s *MemoryStore) Check(key string) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	e, ok := s.entries[key]
	if !ok || now.Sub(e.windowStart) > s.window {
		s.entries[key] = entry{count: 1, windowStart: now}
		return Decision{Allowed: true, Limit: s.limit, Remaining: s.limit - 1, Reset: now.Add(s.window)}
	}

	if e.count >= s.limit {
		return Decision{Allowed: false, Limit: s.limit, Remaining: 0, Reset: e.windowStart.Add(s.window)}
	}

	e.count++
	s.entries[key] = e
	return Decision{Allowed: true, Limit: s.limit, Remaining: s.limit - e.count, Reset: e.windowStart.Add(s.window)}
}

// sweepLocked drops entries whose window has lapsed. Caller holds the mutex.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, e := range s.entries {
		if now.Sub(e.windowStart) > s.window {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of live entries (used by tests and admin stats).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
