package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// visitorTTL drops limiters of clients idle for longer than this
	visitorTTL      = 10 * time.Minute
	visitorCleanup  = time.Minute
	rateLimitWindow = time.Minute
)

// RateLimiter implements an in-memory per-IP limit of N requests per minute.
// Allowlisted addresses are never limited.
type RateLimiter struct {
	visitors  *cache.Cache
	mu        sync.Mutex
	r         rate.Limit
	b         int
	allowlist map[string]struct{}
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP
// per minute, with bursts up to perMinute
func NewRateLimiter(perMinute int, allowlist []string) *RateLimiter {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, ip := range allowlist {
		allowed[ip] = struct{}{}
	}

	return &RateLimiter{
		visitors:  cache.New(visitorTTL, visitorCleanup),
		r:         rate.Every(rateLimitWindow / time.Duration(perMinute)),
		b:         perMinute,
		allowlist: allowed,
	}
}

// getVisitor returns the rate limiter for a given IP address and refreshes
// its expiry
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors.Get(ip); ok {
		limiter := v.(*rate.Limiter) //nolint:errcheck // only limiters are stored
		rl.visitors.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.r, rl.b)
	rl.visitors.SetDefault(ip, limiter)
	return limiter
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(rateLimitWindow.Seconds()) / rl.b)
	if retryAfter == "0" {
		retryAfter = "1"
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if _, ok := rl.allowlist[ip]; ok {
			c.Next()
			return
		}

		if !rl.getVisitor(ip).Allow() {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.Failure(models.CodeRateLimited, models.MessageRateLimited))
			return
		}

		c.Next()
	}
}
