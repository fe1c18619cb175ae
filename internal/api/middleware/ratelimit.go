package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration, err error)
}

// RateLimit rejects requests with 429 once key(r) has used up its window.
// Requests with an empty key, or arriving while the limiter store is
// failing, are let through.
func RateLimit(limiter Limiter, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			logger := LoggerFromContext(r.Context())

			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), k)
			if err != nil {
				logger.Warn("Rate limit check failed", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				logger.Warn("Rate limit exceeded", slog.Int("retryAfterSeconds", seconds))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				response.Error(w, errors.ResourceExhaustedError("Too many payment attempts, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
