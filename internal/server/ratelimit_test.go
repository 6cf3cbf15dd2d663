package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(rpm int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(rpm).Middleware())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doLimited(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", http.NoBody)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_CeilingThen429(t *testing.T) {
	r := limitedRouter(3)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doLimited(r, "10.0.0.1").Code)
	}
	w := doLimited(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_PerClient(t *testing.T) {
	r := limitedRouter(1)

	assert.Equal(t, http.StatusOK, doLimited(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doLimited(r, "10.0.0.1").Code)
	// a different client is not affected
	assert.Equal(t, http.StatusOK, doLimited(r, "10.0.0.2").Code)
}

func TestRateLimiter_Headers(t *testing.T) {
	r := limitedRouter(5)
	w := doLimited(r, "10.0.0.3")

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}
