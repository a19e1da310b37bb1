package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMiddlewareThrottles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiterMiddleware(1))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req, err := http.NewRequest(http.MethodGet, "/ping", nil)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)

	// With one request per second allowed, three back-to-back requests cannot
	// all land in distinct windows
	throttled := 0
	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code == http.StatusTooManyRequests {
			throttled++
			assert.Contains(t, rec.Body.String(), "Too many requests")
		}
	}
	assert.GreaterOrEqual(t, throttled, 1)
}

func TestEnvRateLimitMiddlewareFallsBackOnBadValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RATE_LIMIT_REQUESTS_PER_SECOND", "not-a-number")

	r := gin.New()
	r.Use(EnvRateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// The default of 5 per second lets a single request through
	req, err := http.NewRequest(http.MethodGet, "/ping", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
