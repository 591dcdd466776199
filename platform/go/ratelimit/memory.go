package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in process memory. Counters are locked
// per key, never globally, so unrelated identities do not serialize on each
// other.
type MemoryStore struct {
	entries sync.Map // key -> *memCounter
}

type memCounter struct {
	mu          sync.Mutex
	windowStart int64 // unix nanoseconds
	count       int64
	lastSeen    int64 // unix nanoseconds, for cleanup
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Incr bumps the counter for key within the window anchored at windowStart.
// A stored window differing from windowStart is the rollover point: the count
// resets to zero under the same lock that performs the increment.
func (s *MemoryStore) Incr(_ context.Context, key string, windowStart time.Time, _ time.Duration) (int64, error) {
	v, _ := s.entries.LoadOrStore(key, &memCounter{})
	entry := v.(*memCounter)

	ws := windowStart.UnixNano()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.windowStart != ws {
		entry.windowStart = ws
		entry.count = 0
	}
	entry.count++
	entry.lastSeen = time.Now().UnixNano()

	return entry.count, nil
}

// Len returns the number of tracked keys (for metrics and testing).
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// StartCleanup spawns a goroutine that drops counters idle for longer than
// maxIdle, checking every interval. Returns a cancel function that stops it.
func (s *MemoryStore) StartCleanup(interval, maxIdle time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup(maxIdle)
			}
		}
	}()
	return cancel
}

func (s *MemoryStore) cleanup(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle).UnixNano()
	s.entries.Range(func(key, v any) bool {
		entry := v.(*memCounter)
		entry.mu.Lock()
		stale := entry.lastSeen < cutoff
		entry.mu.Unlock()
		if stale {
			s.entries.Delete(key)
		}
		return true
	})
}
