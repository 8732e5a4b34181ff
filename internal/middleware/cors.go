package middleware

import "net/http"

// CORSMiddleware applies cross-origin headers based on an origin allowlist.
// A single "*" entry allows any origin.
type CORSMiddleware struct {
	allowAll bool
	allowed  map[string]struct{}
}

// NewCORSMiddleware creates a CORS middleware for the given origins.
func NewCORSMiddleware(origins []string) *CORSMiddleware {
	m := &CORSMiddleware{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o == "*" {
			m.allowAll = true
			continue
		}
		m.allowed[o] = struct{}{}
	}
	return m
}

// Handler returns the middleware handler.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *CORSMiddleware) originAllowed(origin string) bool {
	if m.allowAll {
		return true
	}
	_, ok := m.allowed[origin]
	return ok
}
