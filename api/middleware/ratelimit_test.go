// ABOUTME: Tests for the rate limiting middleware
// ABOUTME: Verifies per-IP buckets, burst limits, and the 429 response shape

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAllow_BurstThenLimited(t *testing.T) {
	rl := NewRateLimiter(1) // 1 req/s, burst 2

	if !rl.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !rl.Allow("1.2.3.4") {
		t.Error("burst request should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request beyond burst should be limited")
	}
}

func TestAllow_SeparateBucketsPerIP(t *testing.T) {
	rl := NewRateLimiter(1)

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	if rl.Allow("1.2.3.4") {
		t.Fatal("first IP should be exhausted")
	}

	if !rl.Allow("5.6.7.8") {
		t.Error("second IP should have its own bucket")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/news", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	if !strings.Contains(last.Body.String(), `"success":false`) {
		t.Errorf("429 body should use the error envelope: %s", last.Body.String())
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "127.0.0.1:80", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.1:5000", "192.168.1.1:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractIP(req); got != tt.want {
				t.Errorf("extractIP = %q, want %q", got, tt.want)
			}
		})
	}
}
