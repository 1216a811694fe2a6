package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupRateLimitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.NewRateLimiter(cfg).Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return router
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	router := setupRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  60,
		BurstSize:       5,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status %d, got %d", i+1, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	router := setupRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  1,
		BurstSize:       2,
		CleanupInterval: time.Minute,
	})

	var last int
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("Expected status %d after burst exhausted, got %d", http.StatusTooManyRequests, last)
	}
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	router := setupRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  1,
		BurstSize:       1,
		CleanupInterval: time.Minute,
	})

	first, _ := http.NewRequest("GET", "/ping", nil)
	first.Header.Set("X-Forwarded-For", "10.0.0.1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first client to pass, got %d", w.Code)
	}

	// Same client again: bucket is drained.
	again, _ := http.NewRequest("GET", "/ping", nil)
	again.Header.Set("X-Forwarded-For", "10.0.0.1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, again)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected same client to be limited, got %d", w.Code)
	}

	other, _ := http.NewRequest("GET", "/ping", nil)
	other.Header.Set("X-Forwarded-For", "10.0.0.2")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("Expected a different client to have its own bucket, got %d", w.Code)
	}
}
