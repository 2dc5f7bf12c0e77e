package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIPForwarded(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestClientIPRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.5:51234"
	assert.Equal(t, "192.0.2.5", ClientIP(req))

	req.RemoteAddr = "192.0.2.5"
	assert.Equal(t, "192.0.2.5", ClientIP(req))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-3))
	assert.Equal(t, 1, ValidateLimit(1))
	assert.Equal(t, 100, ValidateLimit(100))
	assert.Equal(t, 100, ValidateLimit(9999))
}

func TestTokenBucketExhaustion(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// key lain punya bucket sendiri
	assert.True(t, rl.Allow("b"))
}

func TestHealthHandlerDegradedWithoutClassifier(t *testing.T) {
	h := HealthHandler("test", nil, false)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.False(t, status.Classifier)
}

func TestMetricsHandler(t *testing.T) {
	IncrementClassify()
	IncrementFeedback()

	w := httptest.NewRecorder()
	MetricsHandler(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "classify_total")
	assert.Contains(t, body, "feedback_total")
}
