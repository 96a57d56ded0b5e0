package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter implements a token bucket rate limiter keyed by client IP.
type RateLimiter struct {
	mu              sync.Mutex
	buckets         map[string]*bucket
	rate            float64 // tokens per second
	burst           int     // maximum tokens
	cleanupInterval time.Duration
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(rps int, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets:         make(map[string]*bucket),
		rate:            float64(rps),
		burst:           burst,
		cleanupInterval: 10 * time.Minute,
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]
	if !exists {
		rl.buckets[key] = &bucket{
			tokens:    float64(rl.burst) - 1,
			lastCheck: now,
		}
		return true
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens += elapsed * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastCheck = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// cleanup removes old entries periodically.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.lastCheck) > rl.cleanupInterval {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns a Gin middleware for rate limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetClientIP(c)

		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "too_many_requests",
				"error_description": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// GrantRateLimiter provides stricter rate limiting for the token and
// authorization endpoints, where credentials are in play.
type GrantRateLimiter struct {
	*RateLimiter
}

// NewGrantRateLimiter creates a rate limiter for credential endpoints.
func NewGrantRateLimiter() *GrantRateLimiter {
	return &GrantRateLimiter{
		RateLimiter: NewRateLimiter(10, 20),
	}
}

// Middleware returns grant-specific rate limiting.
func (rl *GrantRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Key on IP + endpoint so a burst against /token does not
		// starve /authorize.
		key := GetClientIP(c) + ":" + c.Request.URL.Path

		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "too_many_requests",
				"error_description": "too many token requests",
			})
			return
		}

		c.Next()
	}
}
