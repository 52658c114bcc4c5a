package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractFirstIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"127.0.0.1", "127.0.0.1"},
		{"127.0.0.1, 192.168.1.1", "127.0.0.1"},
		{"10.0.0.1, 10.0.0.2, 10.0.0.3", "10.0.0.1"},
		{"", ""},
		{"   1.2.3.4   ", "1.2.3.4"},
	}

	for _, tt := range tests {
		if got := extractFirstIP(tt.input); got != tt.expected {
			t.Errorf("extractFirstIP(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStripPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"127.0.0.1:8080", "127.0.0.1"},
		{"192.168.1.1", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"[::1]", "::1"},
	}

	for _, tt := range tests {
		if got := stripPort(tt.input); got != tt.expected {
			t.Errorf("stripPort(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"X-Forwarded-For", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "3.3.3.3:1", "1.1.1.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": " 4.4.4.4 "}, "3.3.3.3:1", "4.4.4.4"},
		{"RemoteAddr", nil, "5.5.5.5:1234", "5.5.5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Errorf("getClientIP() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 2})
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("clients must have separate budgets")
	}
	if rl.Clients() != 2 {
		t.Errorf("Clients() = %d, want 2", rl.Clients())
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 10, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	rl.evictIdle(time.Now())
	if rl.Clients() != 1 {
		t.Fatal("an active client must survive cleanup")
	}
	rl.evictIdle(time.Now().Add(3 * time.Minute))
	if rl.Clients() != 0 {
		t.Error("an idle client should have been cleaned up")
	}

	rl.Stop()
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()

	called := false
	h := SecurityMiddleware(SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"https://example.org"},
		AllowedMethods: []string{http.MethodGet},
	}, func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/sequence", http.NoBody)
	req.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	h(w, req)

	if called {
		t.Error("preflight must not reach the handler")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/sequence", http.NoBody)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h(w, req)
	if !called || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin should pass through without CORS headers")
	}
}
