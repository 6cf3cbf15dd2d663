package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(origins))
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doCORS(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/t", http.NoBody)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	origins := []string{
		"https://captain-jim.vercel.app",
		"https://captain-jim-*.vercel.app",
		"http://localhost:5500",
	}

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"exact match", "https://captain-jim.vercel.app", true},
		{"local dev", "http://localhost:5500", true},
		{"preview subdomain wildcard", "https://captain-jim-git-main.vercel.app", true},
		{"unrelated origin", "https://evil.example.com", false},
		{"wildcard must not match bare prefix+suffix", "https://captain-jim-.vercel.app.evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doCORS(corsRouter(origins), http.MethodGet, tt.origin)
			assert.Equal(t, http.StatusOK, w.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	w := doCORS(corsRouter([]string{"http://localhost:5500"}), http.MethodOptions, "http://localhost:5500")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5500", w.Header().Get("Access-Control-Allow-Origin"))
}
