package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// RateLimiter throttles a route per client IP. With a redis client the
// counters are shared between instances; otherwise each process keeps a
// token bucket per IP.
type RateLimiter struct {
	redisClient *redis.Client

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter; client may be nil
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		redisClient: client,
		buckets:     make(map[string]*rate.Limiter),
	}
}

// Limit allows limit requests per window for each client IP
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.ClientIP())

		var allowed bool
		var retryAfter time.Duration
		if rl.redisClient != nil {
			allowed, retryAfter = rl.allowRedis(c, key, limit, window)
		} else {
			allowed, retryAfter = rl.allowLocal(key, limit, window)
		}

		if !allowed {
			logger.Warn().Str("key", key).Msg("Rate limit exceeded")
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTooManyRequests,
				"too many attempts, try again later"))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allowRedis(c *gin.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	ctx := c.Request.Context()
	count, err := rl.redisClient.Incr(ctx, key).Result()
	if err != nil {
		// fail open; the login itself is still checked
		logger.Warn().Err(err).Msg("Rate limiter unavailable")
		return true, 0
	}
	if count == 1 {
		rl.redisClient.Expire(ctx, key, window)
	}
	if count > int64(limit) {
		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		return false, ttl
	}
	return true, 0
}

func (rl *RateLimiter) allowLocal(key string, limit int, window time.Duration) (bool, time.Duration) {
	rl.mu.Lock()
	lim, ok := rl.buckets[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(window/time.Duration(max(limit, 1))), limit)
		rl.buckets[key] = lim
	}
	rl.mu.Unlock()

	r := lim.Reserve()
	if !r.OK() {
		return false, window
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}
