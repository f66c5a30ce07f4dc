package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leadform/internal/config"
)

// SubmitPath is the route guarded by SubmitRateLimiter.
const SubmitPath = "/api/submit"

// SubmitRateLimiter applies a token bucket limiter per client IP for the submission endpoint.
func SubmitRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	limiters := newClientLimiters(cfg, time.Now)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() != SubmitPath {
				return next(c)
			}

			if !limiters.allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "submission rate limit exceeded"})
			}

			return next(c)
		}
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters keeps one bucket per client. A bucket idle for a full interval
// has refilled completely, so dropping it loses no state.
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	clients   map[string]*clientBucket
}

func newClientLimiters(cfg config.RateLimitConfig, now func() time.Time) *clientLimiters {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return &clientLimiters{
		limit:     rate.Every(perRequest),
		burst:     cfg.Requests,
		idle:      cfg.Interval,
		now:       now,
		lastSweep: now(),
		clients:   make(map[string]*clientBucket),
	}
}

func (l *clientLimiters) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for key, bucket := range l.clients {
			if now.Sub(bucket.lastSeen) >= l.idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	bucket, ok := l.clients[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}
