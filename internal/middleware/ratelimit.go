package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

// CallerLimiters hands out one token bucket per caller identity, created
// lazily on first sight.
type CallerLimiters struct {
	mu       sync.Mutex
	limiters map[model.Identity]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewCallerLimiters(rps float64, burst int) *CallerLimiters {
	if rps <= 0 {
		rps = 50
	}
	if burst <= 0 {
		burst = 100
	}
	return &CallerLimiters{
		limiters: make(map[model.Identity]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *CallerLimiters) Get(caller model.Identity) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[caller]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[caller] = limiter
	}
	return limiter
}

func RateLimitMiddleware(limiters *CallerLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 必须在 AuthMiddleware 之后使用
		caller, ok := Caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !limiters.Get(caller).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s", // 简单建议
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
