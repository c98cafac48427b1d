package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// caller tracks one rate-limit bucket.
type caller struct {
	count    int
	lastSeen time.Time
}

// RateLimiter caps requests per caller within a sliding window. The sync
// subtree sits behind it so a misfiring cron or dashboard retry loop
// cannot hammer the trigger endpoint.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*caller
	limit   int
	window  time.Duration
	keyFn   func(r *http.Request) string
}

// NewRateLimiter keys callers by client IP (RealIP runs earlier in the
// chain, so RemoteAddr reflects the true origin). Use SetKeyFunc to key
// by something else, e.g. a token subject.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		limit:   limit,
		window:  window,
		keyFn:   clientIP,
	}

	// Cleanup goroutine
	go func() {
		for {
			time.Sleep(window)
			rl.mu.Lock()
			for key, c := range rl.callers {
				if time.Since(c.lastSeen) > window {
					delete(rl.callers, key)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

func (rl *RateLimiter) SetKeyFunc(keyFn func(r *http.Request) string) {
	rl.keyFn = keyFn
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.keyFn(r)

		rl.mu.Lock()
		c, exists := rl.callers[key]
		if !exists {
			rl.callers[key] = &caller{count: 1, lastSeen: time.Now()}
			rl.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}

		if time.Since(c.lastSeen) > rl.window {
			c.count = 1
			c.lastSeen = time.Now()
			rl.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}

		c.count++
		c.lastSeen = time.Now()
		count := c.count
		rl.mu.Unlock()

		if count > rl.limit {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port so one client is one bucket regardless of the
// ephemeral source port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
