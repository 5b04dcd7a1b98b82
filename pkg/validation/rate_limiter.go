package validation

import (
	"sync"
	"time"
)

// RateLimiter is a per-client token bucket. Each client may spend up to
// maxRequests tokens per window; tokens refill continuously.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	clients     map[string]*bucket
	mu          sync.Mutex
	now         func() time.Time
	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter with specified limits
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*bucket),
		now:         time.Now,
		done:        make(chan struct{}),
	}

	rl.cleanupTick = time.NewTicker(window)
	go rl.cleanup()

	return rl
}

// Allow spends one token for clientID and reports whether one was available.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[clientID]
	if !ok {
		b = &bucket{tokens: float64(rl.maxRequests), lastSeen: now}
		rl.clients[clientID] = b
	}

	elapsed := now.Sub(b.lastSeen)
	if elapsed > 0 {
		b.tokens += float64(rl.maxRequests) * float64(elapsed) / float64(rl.window)
		if b.tokens > float64(rl.maxRequests) {
			b.tokens = float64(rl.maxRequests)
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Forget drops the bucket of a client that has disconnected.
func (rl *RateLimiter) Forget(clientID string) {
	rl.mu.Lock()
	delete(rl.clients, clientID)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.removeInactiveClients()
		case <-rl.done:
			return
		}
	}
}

// removeInactiveClients drops clients idle for two windows; their buckets
// would be full again anyway.
func (rl *RateLimiter) removeInactiveClients() {
	cutoff := rl.now().Add(-2 * rl.window)

	rl.mu.Lock()
	for clientID, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, clientID)
		}
	}
	rl.mu.Unlock()
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
