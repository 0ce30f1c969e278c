package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate of each bucket.
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
	// PerIP keeps one bucket per client address.
	PerIP bool
	// Paths limits the middleware to these exact paths. Empty means all.
	Paths []string
}

// RateLimit rejects requests with 429 once the token bucket is empty. The
// response carries a Retry-After hint.
func RateLimit(cfg RateLimitConfig) Middleware {
	var limiterFor func(r *http.Request) *rate.Limiter
	if cfg.PerIP {
		l := newPerIPLimiter(cfg.RequestsPerSecond, cfg.Burst)
		limiterFor = func(r *http.Request) *rate.Limiter {
			return l.getLimiter(getClientIP(r))
		}
	} else {
		shared := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
		limiterFor = func(*http.Request) *rate.Limiter { return shared }
	}

	paths := make(map[string]bool, len(cfg.Paths))
	for _, p := range cfg.Paths {
		paths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(paths) > 0 && !paths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			res := limiterFor(r).Reserve()
			if delay := res.Delay(); !res.OK() || delay > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", retryAfter(res.OK(), delay))
				writeError(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(ok bool, delay time.Duration) string {
	if !ok {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(delay.Seconds())))
}

// perIPMaxEntries bounds the number of tracked client addresses.
const perIPMaxEntries = 10000

type ipLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// perIPLimiter manages rate limiters per client IP.
type perIPLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*ipLimiterEntry
	rps        rate.Limit
	burst      int
	maxEntries int
}

func newPerIPLimiter(rps float64, burst int) *perIPLimiter {
	return &perIPLimiter{
		limiters:   make(map[string]*ipLimiterEntry),
		rps:        rate.Limit(rps),
		burst:      burst,
		maxEntries: perIPMaxEntries,
	}
}

func (l *perIPLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.limiters[ip]
	if !exists {
		if len(l.limiters) >= l.maxEntries {
			l.evictOldest()
		}
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

// evictOldest drops the least recently used entry. Caller holds mu.
func (l *perIPLimiter) evictOldest() {
	var (
		oldestIP string
		oldest   time.Time
	)
	for ip, entry := range l.limiters {
		if oldestIP == "" || entry.lastAccess.Before(oldest) {
			oldestIP, oldest = ip, entry.lastAccess
		}
	}
	delete(l.limiters, oldestIP)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the host part of RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
