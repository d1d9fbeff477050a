// internal/middleware/rate_limit.go
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	// Clean up old visitors every minute
	go rl.cleanupVisitors()

	return rl
}

func (rl *RateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		rl.mtx.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimits groups the limiters applied to the API. A disabled set lets every
// request through.
type RateLimits struct {
	enabled bool
	general *RateLimiter
	login   *RateLimiter
	upload  *RateLimiter
}

func NewRateLimits(cfg config.RateLimitConfig) *RateLimits {
	if !cfg.Enabled {
		return &RateLimits{}
	}
	return &RateLimits{
		enabled: true,
		general: NewRateLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		login:   NewRateLimiter(perMinute(cfg.LoginsPerMin), cfg.LoginsPerMin),
		upload:  NewRateLimiter(perMinute(cfg.UploadsPerMin), cfg.UploadsPerMin),
	}
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

func passThrough(c *gin.Context) { c.Next() }

func (r *RateLimits) General() gin.HandlerFunc {
	if !r.enabled {
		return passThrough
	}
	return r.general.Middleware()
}

func (r *RateLimits) Login() gin.HandlerFunc {
	if !r.enabled {
		return passThrough
	}
	return r.login.Middleware()
}

func (r *RateLimits) Upload() gin.HandlerFunc {
	if !r.enabled {
		return passThrough
	}
	return r.upload.Middleware()
}
