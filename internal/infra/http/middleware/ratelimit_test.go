package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/userdeskio/api/internal/config"
)

func testRateLimitConfig(rps float64, burst int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		RequestsPerSec:  rps,
		Burst:           burst,
		CleanupInterval: time.Minute,
	}
}

func TestRateLimitEnforcesBurst(t *testing.T) {
	mw, stop := RateLimit(testRateLimitConfig(1, 2), testLogger())
	defer stop()

	handler := mw(okHandler(nil))

	send := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRateLimitIsPerClient(t *testing.T) {
	mw, stop := RateLimit(testRateLimitConfig(1, 1), testLogger())
	defer stop()

	handler := mw(okHandler(nil))

	send := func(addr string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7:9999"))
	assert.Equal(t, http.StatusOK, send("198.51.100.3:1234"))
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")

	assert.Equal(t, "203.0.113.7", getClientIP(req))
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	assert.Equal(t, "203.0.113.7", getClientIP(req))
}
