package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// allow records one hit for key and reports whether it is within the limit.
// When it is not, retryAfter is the time left in the current window.
func (rl *RateLimiter) allow(key string) (ok bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, found := rl.clients[key]
	if !found || now.After(b.windowEnd) {
		rl.pruneLocked(now)
		rl.clients[key] = &clientBucket{count: 1, windowEnd: now.Add(rl.window)}
		return true, 0
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now)
	}

	b.count++
	return true, 0
}

// pruneLocked drops expired buckets so one-off clients do not pile up.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		ok, retryAfter := rl.allow(key)
		if !ok {
			secs := int(retryAfter.Seconds())
			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}

// KeyByIP is the key for unauthenticated endpoints.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}

	return ip
}
