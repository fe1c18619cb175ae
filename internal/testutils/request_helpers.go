package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/session"
)

func CreateTestRequestWithSession(method, target string, body io.Reader, sessionID string) *http.Request {
	req := CreateTestRequestWithoutSession(method, target, body)

	return req.WithContext(session.WithID(req.Context(), sessionID))
}

func CreateTestRequestWithoutSession(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	return req.WithContext(ctx)
}
