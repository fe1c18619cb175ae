package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	err        error
	keys       []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, int, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.remaining, s.retryAfter, s.err
}

func TestRateLimit(t *testing.T) {
	headerKey := func(r *http.Request) string { return r.Header.Get("X-Session") }

	serve := func(limiter *stubLimiter, session string) (*httptest.ResponseRecorder, bool) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/pay-url", nil)
		if session != "" {
			req.Header.Set("X-Session", session)
		}
		rr := httptest.NewRecorder()

		middleware.RateLimit(limiter, headerKey)(next).ServeHTTP(rr, req)
		return rr, called
	}

	t.Run("Success - Allowed request passes through", func(t *testing.T) {
		// Arrange
		limiter := &stubLimiter{allowed: true, remaining: 4}

		// Act
		rr, called := serve(limiter, "s1")

		// Assert
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "4", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"s1"}, limiter.keys)
	})

	t.Run("Failure - Exhausted window returns 429", func(t *testing.T) {
		// Arrange
		limiter := &stubLimiter{allowed: false, retryAfter: 1500 * time.Millisecond}

		// Act
		rr, called := serve(limiter, "s1")

		// Assert
		assert.False(t, called)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("Retry-After"))

		var body response.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.False(t, body.OK)
		assert.Equal(t, "RESOURCE_EXHAUSTED", body.Error.Code)
	})

	t.Run("Success - Limiter error fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis down")}

		rr, called := serve(limiter, "s1")

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Retry-After"))
	})

	t.Run("Success - Empty key skips the limiter", func(t *testing.T) {
		limiter := &stubLimiter{}

		rr, called := serve(limiter, "")

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, limiter.keys)
	})
}
