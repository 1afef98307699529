package memory

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count     int
	expiresAt time.Time
}

// RateLimitRepository keeps fixed-window counters in process memory.
type RateLimitRepository struct {
	mu       sync.Mutex
	counters map[string]*counter
}

func NewRateLimitRepository() *RateLimitRepository {
	return &RateLimitRepository{counters: make(map[string]*counter)}
}

func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[key]
	if !ok || !c.expiresAt.After(now) {
		c = &counter{expiresAt: now.Add(window)}
		r.counters[key] = c
	}
	c.count++
	return c.count, c.expiresAt, nil
}

func (r *RateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, c := range r.counters {
		if !c.expiresAt.After(now) {
			delete(r.counters, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live counters.
func (r *RateLimitRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counters)
}
