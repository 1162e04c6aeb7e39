package service

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter per chat. The window resets fully
// once it elapses, partial refill is not needed for chat traffic.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	counts map[int64]*windowCount

	now func() time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	return &rateLimiter{
		window: window,
		max:    max,
		counts: make(map[int64]*windowCount),
		now:    time.Now,
	}
}

// allow reports whether the chat may issue another command in the current
// window and counts the attempt if so.
func (r *rateLimiter) allow(chatID int64) bool {
	if r.max <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c := r.counts[chatID]
	if c == nil || now.Sub(c.start) >= r.window {
		r.counts[chatID] = &windowCount{start: now, n: 1}
		return true
	}
	if c.n >= r.max {
		return false
	}
	c.n++
	return true
}
