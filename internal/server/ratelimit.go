package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter enforces a fixed requests-per-minute ceiling per client IP,
// backed by an in-memory store.
type RateLimiter struct {
	limiter *limiter.Limiter
}

func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(requestsPerMinute),
	}
	return &RateLimiter{limiter: limiter.New(memorystore.NewStore(), rate)}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lctx, err := r.limiter.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "rate limiter failure"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "rate limit exceeded, retry later"})
			return
		}
		c.Next()
	}
}
