package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store records request timestamps per key and answers whether another
// request fits the window. Implementations must not record denied attempts:
// a client hammering a full window sees its oldest slot expire on schedule
// rather than pushed ever further away.
type Store interface {
	// Allow reports whether the key has budget left in the window ending
	// now, and if so records the request.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Close() error
}

// MemoryStore is the single-process Store. Entries are pruned lazily on
// access, and a background sweep drops keys that have gone quiet entirely so
// one-off clients do not accumulate forever.
type MemoryStore struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	now     func() time.Time
	done    chan struct{}
	closeMu sync.Once
}

// NewMemoryStore starts the sweep goroutine. sweepEvery <= 0 disables the
// sweep, which tests use to keep timing deterministic.
func NewMemoryStore(sweepEvery, maxWindow time.Duration) *MemoryStore {
	s := &MemoryStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
		done: make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweep(sweepEvery, maxWindow)
	}
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := s.now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := pruneBefore(s.hits[key], cutoff)
	if len(kept) >= limit {
		s.hits[key] = kept
		return false, nil
	}
	s.hits[key] = append(kept, now)
	return true, nil
}

func (s *MemoryStore) Close() error {
	s.closeMu.Do(func() { close(s.done) })
	return nil
}

// sweep periodically removes keys whose newest hit is older than maxWindow.
// Lazy pruning alone never visits keys that stop getting requests.
func (s *MemoryStore) sweep(every, maxWindow time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := s.now().Add(-maxWindow)
			s.mu.Lock()
			for key, hits := range s.hits {
				if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
					delete(s.hits, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// keyCount is used by tests and the sweep to observe retention.
func (s *MemoryStore) keyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// pruneBefore drops timestamps at or before cutoff. Hits are appended in
// time order, so the first surviving index bounds the rest.
func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}
