package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	n       int64
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	swept    time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: map[string]*counter{}, now: time.Now}
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expires) {
		if now.Sub(s.swept) >= ttl {
			s.sweep(now)
		}
		c = &counter{}
		s.counters[key] = c
	}
	c.n++
	c.expires = now.Add(ttl)
	return c.n, nil
}

// sweep drops expired counters. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	s.swept = now
	for k, c := range s.counters {
		if !now.Before(c.expires) {
			delete(s.counters, k)
		}
	}
}
