package echoapi

import (
	"math"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
)

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getContextSession(ctx)
			if err != nil {
				return err
			}
			if sess.Is(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err) // let the error handler write the status
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(ctx.Request().Method, route, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}

type bucket struct {
	tokens float64
	last   time.Time
}

// rateLimiter is a token bucket per client IP: rate tokens per second, up to burst.
type rateLimiter struct {
	rate  float64
	burst float64

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newRateLimiter(rate float64, burst int) *rateLimiter {
	return &rateLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	if rl.rate <= 0 || rl.burst <= 0 { // disabled
		return true
	}
	now := core.NowFunc()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(rl.burst, b.tokens+elapsed*rl.rate)
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to have refilled; a new bucket starts full anyway.
func (rl *rateLimiter) sweep(now time.Time) {
	idle := time.Duration(rl.burst / rl.rate * float64(time.Second))
	if now.Sub(rl.lastSweep) < idle {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.buckets {
		if now.Sub(b.last) >= idle {
			delete(rl.buckets, key)
		}
	}
}

func (rl *rateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !rl.allow(ctx.RealIP()) {
				return errRateLimited
			}
			return next(ctx)
		}
	}
}
