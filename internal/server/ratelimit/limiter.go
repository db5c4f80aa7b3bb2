// Package ratelimit implements a fixed-window request counter per client key.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Store increments the counter of key and makes it expire after ttl.
// It returns the counter value after the increment.
type Store interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result describes the state of the caller's window after a request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter allows at most Max requests per key in each Window.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window, now: time.Now}
}

// Allow counts one request for key. On a store error the request is allowed
// and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	start := l.now().Truncate(l.window)
	res := Result{Allowed: true, Limit: l.max, Remaining: l.max, Reset: start.Add(l.window)}

	n, err := l.store.Incr(ctx, windowKey(key, start), l.window)
	if err != nil {
		return res, fmt.Errorf("rate limit store: %w", err)
	}

	res.Remaining = max(l.max-int(n), 0)
	res.Allowed = n <= int64(l.max)
	return res, nil
}

func windowKey(key string, start time.Time) string {
	return "ratelimit:" + key + ":" + strconv.FormatInt(start.Unix(), 10)
}
