package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(config.Session{
		CookieName:  "dvshop.sid",
		Secret:      "test-secret",
		IdleTimeout: time.Hour,
	})
}

// serve runs one request through the middleware and returns the session id
// seen by the handler plus the cookie that was issued.
func serve(t *testing.T, m *Manager, cookie *http.Cookie) (string, *http.Cookie) {
	t.Helper()

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IDFromContext(r.Context())
		require.True(t, ok)
		seen = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	return seen, cookies[0]
}

func TestMiddleware(t *testing.T) {
	t.Run("Success - New session issued", func(t *testing.T) {
		m := newTestManager(t)

		id, cookie := serve(t, m, nil)

		assert.NotEmpty(t, id)
		assert.Equal(t, "dvshop.sid", cookie.Name)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)
	})

	t.Run("Success - Cookie keeps the session", func(t *testing.T) {
		m := newTestManager(t)

		first, cookie := serve(t, m, nil)
		second, _ := serve(t, m, cookie)

		assert.Equal(t, first, second)
	})

	t.Run("Success - Expiry slides on each request", func(t *testing.T) {
		// Arrange
		m := newTestManager(t)
		start := time.Now()
		m.now = func() time.Time { return start }
		first, cookie := serve(t, m, nil)

		// Act: 50 minutes later, inside the idle window
		m.now = func() time.Time { return start.Add(50 * time.Minute) }
		second, refreshed := serve(t, m, cookie)

		// 100 minutes after start, but only 50 since the last request
		m.now = func() time.Time { return start.Add(100 * time.Minute) }
		third, _ := serve(t, m, refreshed)

		// Assert
		assert.Equal(t, first, second)
		assert.Equal(t, first, third)
	})

	t.Run("Failure - Idle session is replaced", func(t *testing.T) {
		m := newTestManager(t)
		start := time.Now()
		m.now = func() time.Time { return start }
		first, cookie := serve(t, m, nil)

		m.now = func() time.Time { return start.Add(61 * time.Minute) }
		second, _ := serve(t, m, cookie)

		assert.NotEqual(t, first, second)
	})

	t.Run("Failure - Tampered cookie is replaced", func(t *testing.T) {
		m := newTestManager(t)
		first, cookie := serve(t, m, nil)

		cookie.Value += "x"
		second, _ := serve(t, m, cookie)

		assert.NotEqual(t, first, second)
	})

	t.Run("Failure - Cookie signed with another secret is replaced", func(t *testing.T) {
		m := newTestManager(t)
		other := NewManager(config.Session{CookieName: "dvshop.sid", Secret: "other", IdleTimeout: time.Hour})
		foreign, cookie := serve(t, other, nil)

		id, _ := serve(t, m, cookie)

		assert.NotEqual(t, foreign, id)
	})

	t.Run("Failure - Unsigned token is rejected", func(t *testing.T) {
		m := newTestManager(t)
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			ID:        "attacker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		id, _ := serve(t, m, &http.Cookie{Name: "dvshop.sid", Value: token})

		assert.NotEqual(t, "attacker", id)
	})
}

func TestOnActive(t *testing.T) {
	t.Run("Success - Hook runs only for resumed sessions", func(t *testing.T) {
		// Arrange
		m := newTestManager(t)
		var touched []string
		m.OnActive(func(_ context.Context, sessionID string) error {
			touched = append(touched, sessionID)
			return nil
		})

		// Act
		id, cookie := serve(t, m, nil)
		assert.Empty(t, touched, "a brand new session has nothing to refresh")
		serve(t, m, cookie)

		// Assert
		assert.Equal(t, []string{id}, touched)
	})

	t.Run("Failure - Hook error does not fail the request", func(t *testing.T) {
		m := newTestManager(t)
		m.OnActive(func(context.Context, string) error { return errors.New("redis down") })

		first, cookie := serve(t, m, nil)
		second, _ := serve(t, m, cookie)

		assert.Equal(t, first, second)
	})
}

func TestIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := IDFromContext(req.Context())
	assert.False(t, ok)

	id, ok := IDFromContext(WithID(req.Context(), "s1"))
	assert.True(t, ok)
	assert.Equal(t, "s1", id)
}
