package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// sessionID writes a 500 and returns false when the session middleware did
// not run for this route.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Error("Session id missing from request context")
		response.Error(w, errors.InternalError("Session unavailable"))
		return "", false
	}

	return id, true
}
