package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(IPRateLimit(NewRateLimiter(0.001, 2)))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1235").Code)

	w := call("10.0.0.1:1236")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := parseResponse(t, w)
	assert.False(t, resp.Success)

	// another client keeps its own bucket
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234").Code)
}

func TestNewRateLimiter_MinimumBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	assert.True(t, limiter.Allow("k"))
}
