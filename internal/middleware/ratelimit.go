package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int

	// TrustProxy enables keying anonymous clients by the last hop of
	// X-Forwarded-For. Leave off unless a trusted reverse proxy sets the
	// header; clients can forge it to mint fresh buckets.
	TrustProxy bool
}

// RateLimitMiddleware enforces a per-client token bucket. Authenticated
// requests are keyed by user id, anonymous ones by remote IP.
type RateLimitMiddleware struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates a rate limiting middleware.
func NewRateLimitMiddleware(cfg RateLimitConfig) *RateLimitMiddleware {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	m := &RateLimitMiddleware{
		cfg:      cfg,
		limiters: make(map[string]*clientLimiter),
	}
	go m.cleanup()
	return m
}

// Handler returns the middleware handler. It must run after the auth
// middleware on authenticated routes so the user id is already in the
// context; otherwise every caller behind one address shares a bucket.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetUserID(r.Context())
		if key == "" {
			key = m.clientIP(r)
		}

		if !m.limiterFor(key).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.limiters[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(m.cfg.RequestsPerSecond), m.cfg.Burst),
		}
		m.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (m *RateLimitMiddleware) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		for key, cl := range m.limiters {
			if time.Since(cl.lastSeen) > 10*time.Minute {
				delete(m.limiters, key)
			}
		}
		m.mu.Unlock()
	}
}

func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	if m.cfg.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			// Only the last hop is set by the proxy in front of us.
			hops := strings.Split(fwd, ",")
			if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
