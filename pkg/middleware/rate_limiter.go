package middleware

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ipWindow struct {
	count   int
	started time.Time
}

// RateLimiter caps requests per client IP within a fixed window. Each IP
// carries its own window start, so one client crossing the boundary does
// not reset anyone else's count.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	clients   map[string]*ipWindow
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
}

func NewRateLimiter(limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*ipWindow),
		now:     time.Now,
		logger:  logger.Named("ratelimit"),
	}
}

// WithNow injects a deterministic clock for tests.
func (r *RateLimiter) WithNow(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	w, ok := r.clients[ip]
	if !ok || now.Sub(w.started) > r.window {
		r.clients[ip] = &ipWindow{count: 1, started: now}
		return true
	}

	if w.count >= r.limit {
		return false
	}
	w.count++
	return true
}

// sweep drops windows that fully elapsed, so idle IPs do not pile up in
// the map. Runs at most once per window. Caller holds the mutex.
func (r *RateLimiter) sweep(now time.Time) {
	if !r.lastSweep.IsZero() && now.Sub(r.lastSweep) <= r.window {
		return
	}
	for ip, w := range r.clients {
		if now.Sub(w.started) > r.window {
			delete(r.clients, ip)
		}
	}
	r.lastSweep = now
}

func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := req.RemoteAddr
		if !r.Allow(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			r.logger.Warn("rate limit exceeded", zap.String("ip", ip))
			return
		}

		next.ServeHTTP(w, req)
	})
}
