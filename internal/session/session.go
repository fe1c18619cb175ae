// Package session identifies browser sessions with a signed cookie.
//
// The cookie carries only the session id. Session data (the cart) lives in
// the cart repository under that id; an OnActive hook lets that data share
// the cookie's sliding expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey struct{}

var idKey = contextKey{}

type Manager struct {
	cookieName  string
	secret      []byte
	idleTimeout time.Duration
	secure      bool
	now         func() time.Time
	onActive    func(ctx context.Context, sessionID string) error
}

func NewManager(cfg config.Session) *Manager {
	return &Manager{
		cookieName:  cfg.CookieName,
		secret:      []byte(cfg.Secret),
		idleTimeout: cfg.IdleTimeout,
		secure:      cfg.Secure,
		now:         time.Now,
	}
}

// OnActive registers fn to run for every request that arrives with a valid
// session cookie. Errors are logged and do not fail the request.
func (m *Manager) OnActive(fn func(ctx context.Context, sessionID string) error) {
	m.onActive = fn
}

// Middleware resolves the session id from the cookie, creating a new session
// when the cookie is missing, tampered with or expired. The cookie is
// re-issued on every request so the idle timeout slides.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, err := m.resolve(r)
		resumed := err == nil
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				logger.Debug("Discarding session cookie", slog.String("error", err.Error()))
			}

			id, genErr := uuid.NewV7()
			if genErr != nil {
				logger.Error("Failed to generate session id", slog.String("error", genErr.Error()))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sessionID = id.String()
		}

		token, err := m.sign(sessionID)
		if err != nil {
			logger.Error("Failed to sign session cookie", slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(m.idleTimeout.Seconds()),
			Expires:  m.now().Add(m.idleTimeout),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := WithID(r.Context(), sessionID)
		logger = logger.With(slog.String("sessionId", sessionID))
		ctx = middleware.WithLogger(ctx, logger)

		if resumed && m.onActive != nil {
			if err := m.onActive(ctx, sessionID); err != nil {
				logger.Warn("Failed to refresh session data", slog.String("error", err.Error()))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) resolve(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", err
	}

	return m.parse(cookie.Value)
}

func (m *Manager) sign(sessionID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.idleTimeout)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	if !token.Valid || claims.ID == "" {
		return "", errors.New("session token has no id")
	}

	return claims.ID, nil
}

func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, idKey, sessionID)
}

// IDFromContext returns the session id set by Manager.Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey).(string)
	return id, ok && id != ""
}
