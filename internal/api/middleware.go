package api

import (
	"net"
	"net/http"

	"github.com/shelfline/shelfline-server/internal/http/response"
)

// rateLimit throttles lending mutations per client IP. A nil limiter
// disables throttling entirely.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if !s.limiter.Allow(key) {
			response.TooManyRequests(w, "Too many requests, slow down", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, relying on middleware.RealIP having
// already resolved X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
