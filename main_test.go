package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	adsclient "github.com/olgasafonova/nasa-ads-mcp-server/internal/ads"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	defer rl.Close()

	if rl.rate != 10 {
		t.Errorf("rate = %d, want 10", rl.rate)
	}
	if rl.interval != time.Minute {
		t.Errorf("interval = %v, want %v", rl.interval, time.Minute)
	}
	if rl.stopCh == nil {
		t.Error("stopCh should be initialized")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	defer rl.Close()

	ip := "192.168.1.1"

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		if !rl.Allow(ip) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow(ip) {
		t.Error("4th request should be denied")
	}
}

func TestRateLimiterMultipleIPs(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	// Each IP should have its own bucket
	for i := 0; i < 2; i++ {
		if !rl.Allow(ip1) {
			t.Errorf("Request %d for ip1 should be allowed", i+1)
		}
		if !rl.Allow(ip2) {
			t.Errorf("Request %d for ip2 should be allowed", i+1)
		}
	}

	if rl.Allow(ip1) {
		t.Error("ip1 should be rate limited")
	}
	if rl.Allow(ip2) {
		t.Error("ip2 should be rate limited")
	}
}

func TestRateLimiterClose(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	// Multiple closes should be safe
	rl.Close()
	rl.Close()
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	ip := "192.168.1.1"

	if !rl.Allow(ip) {
		t.Error("First request should be allowed")
	}
	if rl.Allow(ip) {
		t.Error("Immediate second request should be denied")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow(ip) {
		t.Error("Request after refill should be allowed")
	}
}

func TestRecoverPanic(t *testing.T) {
	func() {
		defer recoverPanic(quietLogger(), "test operation")
		panic("test panic")
	}()

	// If we get here, the panic was recovered
}

// Mock handler for testing
type mockHandler struct {
	called bool
	body   []byte
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	m.body = body
	w.WriteHeader(http.StatusOK)
}

func TestSecurityMiddlewareBasic(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 1000})
	defer sm.Close()

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader("{}"))
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	sm.ServeHTTP(w, req)

	if !handler.called {
		t.Error("Handler should have been called")
	}
	if string(handler.body) != "{}" {
		t.Errorf("body = %q", handler.body)
	}
}

func TestSecurityMiddlewareAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid token", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{}
			sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{AuthToken: "secret"})
			defer sm.Close()

			req := httptest.NewRequest("POST", "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			sm.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if handler.called != (tt.want == http.StatusOK) {
				t.Errorf("handler called = %v", handler.called)
			}
		})
	}
}

func TestSecurityMiddlewareWithRateLimit(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{
		RateLimit:   2, // 2 requests per minute
		MaxBodySize: 1000,
	})
	defer sm.Close()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	for i := 0; i < 2; i++ {
		handler.called = false
		w := httptest.NewRecorder()
		sm.ServeHTTP(w, req)
		if !handler.called {
			t.Errorf("Request %d should have been allowed", i+1)
		}
	}

	handler.called = false
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
}

func TestSecurityMiddlewareBodySize(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 8})
	defer sm.Close()

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
	if handler.called {
		t.Error("handler should not see an oversized body")
	}
}

func TestLoadHTTPConfig(t *testing.T) {
	t.Setenv(EnvAuthToken, "tok")
	t.Setenv(EnvHTTPRate, "30")
	t.Setenv(EnvMaxBodySize, "2048")

	cfg := LoadHTTPConfig()
	if cfg.AuthToken != "tok" || cfg.RateLimit != 30 || cfg.MaxBodySize != 2048 {
		t.Errorf("config = %+v", cfg)
	}

	t.Setenv(EnvHTTPRate, "lots")
	if cfg := LoadHTTPConfig(); cfg.RateLimit != 120 {
		t.Errorf("invalid rate should keep the default, got %d", cfg.RateLimit)
	}
}

func TestRouter(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	handler, closeRouter := newRouter(server, quietLogger(), SecurityConfig{AuthToken: "secret"})
	defer closeRouter()

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["status"] != "ok" || body["name"] != ServerName {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "ads_mcp_http_requests_total") {
			t.Error("metrics output should include the HTTP request counter")
		}
	})

	t.Run("mcp requires auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader("{}")))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestTransportName(t *testing.T) {
	if got := transportName(""); got != "stdio" {
		t.Errorf("transportName(\"\") = %q", got)
	}
	if got := transportName(":8080"); got != "http" {
		t.Errorf("transportName(\":8080\") = %q", got)
	}
}

func TestCheckConnection(t *testing.T) {
	ads := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rows") != "3" {
			t.Errorf("rows = %q, want 3", r.URL.Query().Get("rows"))
		}
		_, _ = io.WriteString(w, `{"response":{"numFound":1,"docs":[{"bibcode":"2019ApJ...878...98S","title":["Stellar populations"],"year":"2019"}]}}`)
	}))
	defer ads.Close()

	client := adsclient.NewClient("test-token", adsclient.WithBaseURL(ads.URL), adsclient.WithLogger(quietLogger()))
	var out strings.Builder
	if err := checkConnection(context.Background(), client, &out); err != nil {
		t.Fatalf("checkConnection: %v", err)
	}
	if !strings.Contains(out.String(), "bibcode: 2019ApJ...878...98S") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunRequiresToken(t *testing.T) {
	t.Setenv(adsclient.EnvToken, "")

	err := run(quietLogger(), new(slog.LevelVar), "", "", filepath.Join(t.TempDir(), "missing.env"), false)
	var cfgErr *apierrors.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if cfgErr.Key != adsclient.EnvToken {
		t.Errorf("key = %q, want %s", cfgErr.Key, adsclient.EnvToken)
	}
}
