package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/currencies/pkg/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(CorrelationID(), Recovery(), RequestLogger(), Metrics("currencyd-test"))
	router.GET("/test", handler)
	return router
}

func TestCorrelationID_GeneratesAndPropagates(t *testing.T) {
	var fromGin, fromRequest string
	router := newTestRouter(func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromRequest = logger.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, fromGin)
	assert.Equal(t, fromGin, fromRequest)
	assert.Equal(t, fromGin, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationID_ReusesHeader(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(CorrelationIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(CorrelationIDHeader))
}

func TestRecovery_ReturnsInternalServerError(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name            string
		strictTransport bool
		expectHSTS      bool
	}{
		{"development", false, false},
		{"production", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(SecurityHeaders(tt.strictTransport))
			router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
			assert.Equal(t, tt.expectHSTS, w.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestCorrelationID_FallsBackToRequestID(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "proxy-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "proxy-42", w.Body.String())
	assert.Equal(t, "proxy-42", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationID_ReplacesUnprintableID(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(CorrelationIDHeader, "bad id\twith spaces")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "bad id\twith spaces", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		status    int
		hasErrors bool
		expected  zapcore.Level
	}{
		{http.StatusOK, false, zapcore.InfoLevel},
		{http.StatusOK, true, zapcore.ErrorLevel},
		{http.StatusNotFound, false, zapcore.WarnLevel},
		{http.StatusServiceUnavailable, false, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levelFor(tt.status, tt.hasErrors), "status %d", tt.status)
	}
}
