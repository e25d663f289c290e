package middleware

import (
	"sync"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter - token bucket на каждый IP клиента
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewRateLimiter: perMinute запросов в минуту, burst - размер всплеска
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		ttl:      10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.cleanup(now)
	return v.limiter.AllowN(now, 1)
}

// cleanup удаляет давно неактивных клиентов; вызывается под mu
func (rl *RateLimiter) cleanup(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, key)
		}
	}
}

// Middleware - 429 при превышении лимита
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			logger.CtxWarn(c.Request.Context(), "rate limit exceeded", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			c.Header("Retry-After", "60")
			apperrors.HandleError(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
