package server

import (
	"net/http"
	"time"

	"github.com/agbru/fibseq/internal/logging"
)

// WithRateLimiter sets a custom rate limiter for the server.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs method, path, client, status and duration of
// each request.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		s.logger.Info("request completed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("client", getClientIP(r)),
			logging.Int("status", rec.status),
			logging.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000))
	}
}
