package middleware

import (
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/ratelimit"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/response"
	"github.com/gin-gonic/gin"
)

// Admitter decides whether key may make another request at now.
type Admitter interface {
	Admit(key string, now time.Time) ratelimit.Decision
}

// RateLimiter gates requests by the identity ResolveIdentity attached.
type RateLimiter struct {
	limiter Admitter
	bypass  *ratelimit.BypassPolicy
	enabled bool
	now     func() time.Time
}

// NewRateLimiter returns a gate over limiter. When enabled is false every
// request passes untouched.
func NewRateLimiter(limiter Admitter, bypass *ratelimit.BypassPolicy, enabled bool) *RateLimiter {
	if bypass == nil {
		bypass = ratelimit.NewBypassPolicy(nil, nil)
	}
	return &RateLimiter{
		limiter: limiter,
		bypass:  bypass,
		enabled: enabled,
		now:     time.Now,
	}
}

// Middleware returns a Gin middleware that answers 429 with Retry-After
// once the caller's window is full.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled || rl.bypass.Bypassed(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := GetIdentity(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		decision := rl.limiter.Admit(key, rl.now())
		if !decision.Allowed {
			logger.Warn().
				Str("request_id", logger.GetRequestID(c)).
				Str("identity", key).
				Str("path", c.Request.URL.Path).
				Int("retry_after", decision.RetryAfter).
				Msg("rate limit exceeded")
			response.Abort(c, response.NewTooManyRequests(decision.RetryAfter))
			return
		}

		c.Next()
	}
}
