package server

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig holds configuration for security and CORS headers.
type SecurityConfig struct {
	EnableCORS bool
	// AllowedOrigins lists the CORS origins. "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
}

// DefaultSecurityConfig returns the default security configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}
}

// SecurityMiddleware adds security headers to every response, adds CORS
// headers for allowed origins, and answers preflight requests.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			origin := r.Header.Get("Origin")
			allowedOrigin := ""
			if slices.Contains(config.AllowedOrigins, "*") {
				allowedOrigin = "*"
			} else if origin != "" && slices.Contains(config.AllowedOrigins, origin) {
				allowedOrigin = origin
			}

			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next(w, r)
	}
}
