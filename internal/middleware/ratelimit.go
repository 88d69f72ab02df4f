package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tienda-dashboard/internal/config"
	"tienda-dashboard/internal/errors"
	"tienda-dashboard/internal/observability"
)

const (
	// DefaultSweepInterval is how often Run looks for idle clients.
	DefaultSweepInterval = time.Minute

	clientIdleTTL = 3 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. Buckets of clients that
// have been quiet for longer than the idle TTL are dropped by Sweep.
type RateLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

func NewRateLimiter(cfg config.SecurityConfig) *RateLimiter {
	return &RateLimiter{
		enabled: cfg.EnableRateLimit,
		limit:   rate.Limit(cfg.RateLimitRPS),
		burst:   cfg.RateLimitBurst,
		idleTTL: clientIdleTTL,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// Sweep drops idle clients and returns how many are still tracked.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
	return len(rl.clients)
}

// Run sweeps every interval until ctx is cancelled. main cancels it from a
// shutdown hook.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				logger.Debug("rate limiter swept", "clients", n)
			}
		}
	}
}

func RateLimit(limiter *RateLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if limiter.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := observability.GetRequestID(r.Context())
			logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "request_id", requestID)
			errors.WriteError(w, logger, errors.RateLimit("Too many requests"), requestID)
		})
	}
}
