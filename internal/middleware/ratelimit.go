// Package middleware holds the gin middleware in front of the attribution
// API: the sliding-window admission controller and the crawler filter.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/metrics"
)

// cleanupInterval is how often keys with no recent requests are evicted.
const cleanupInterval = 5 * time.Minute

// limiter is a sliding-window request counter keyed by client network
// identity. It is in-process state only: loss on restart is acceptable, and
// it is not linearizable across instances (single-instance deployments only).
type limiter struct {
	window      time.Duration
	maxRequests int
	now         func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
}

func newLimiter(maxRequests int, window time.Duration) *limiter {
	return &limiter{
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
		requests:    make(map[string][]time.Time),
	}
}

// admit checks and records a request for key. When rejected, retryAfter is
// the window length in whole seconds, rounded up.
func (l *limiter) admit(key string) (allowed bool, retryAfter int) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := pruneBefore(l.requests[key], cutoff)
	if len(recent) >= l.maxRequests {
		l.requests[key] = recent
		return false, int((l.window + time.Second - 1) / time.Second)
	}

	l.requests[key] = append(recent, now)
	return true, 0
}

// cleanup evicts keys whose pruned sequence is empty, bounding memory.
// Returns the number of evicted keys.
func (l *limiter) cleanup() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	cleaned := 0
	for key, stamps := range l.requests {
		recent := pruneBefore(stamps, cutoff)
		if len(recent) == 0 {
			delete(l.requests, key)
			cleaned++
		} else {
			l.requests[key] = recent
		}
	}
	return cleaned
}

// pruneBefore drops timestamps older than cutoff, preserving order.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// RateLimiter returns admission-control middleware limiting each client IP to
// maxRequests per sliding window. Rejected requests get a 429 with a
// retryAfter body field and Retry-After header. A background pass every five
// minutes evicts idle keys until done is closed.
func RateLimiter(maxRequests int, window time.Duration, done <-chan struct{}) gin.HandlerFunc {
	lim := newLimiter(maxRequests, window)

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				lim.cleanup()
			case <-done:
				return
			}
		}
	}()

	return func(c *gin.Context) {
		allowed, retryAfter := lim.admit(c.ClientIP())
		if !allowed {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"error":      "Too many requests. Please try again later.",
				"retryAfter": retryAfter,
			})
			return
		}
		c.Next()
	}
}
