package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"golang.org/x/time/rate"
)

const visitorSweepInterval = time.Minute

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	name  string
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*rate.Limiter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit requests per second per client with bursts of
// up to burst. name labels the rejection metric.
func NewRateLimiter(name string, limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		name:     name,
		limit:    limit,
		burst:    burst,
		visitors: make(map[string]*rate.Limiter),
		stop:     make(chan struct{}),
	}
	go rl.sweep(visitorSweepInterval)
	return rl
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) visitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle forgets clients whose bucket has refilled; a fresh bucket
// behaves the same
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, limiter := range rl.visitors {
		if limiter.Tokens() >= float64(rl.burst) {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// retryAfter returns whole seconds until the next token, at least one
func retryAfter(delay time.Duration) string {
	return strconv.Itoa(int(math.Max(1, math.Ceil(delay.Seconds()))))
}

// Middleware rejects clients that ran out of tokens with 429 and Retry-After
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reservation := rl.visitor(c.ClientIP()).Reserve()
		if !reservation.OK() {
			rl.reject(c, time.Minute)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			rl.reject(c, delay)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) reject(c *gin.Context, delay time.Duration) {
	metrics.RateLimitedRequests.WithLabelValues(rl.name).Inc()
	c.Header("Retry-After", retryAfter(delay))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Rate limit exceeded. Please try again later.",
	})
}
