package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mercatohq/mercato-backend/api/responses"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
)

type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy is a fixed window applied per client address and route.
type RateLimitPolicy struct {
	Limit  int64
	Window time.Duration
}

func RateLimit(store fixedWindowStore, policy RateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || policy.Limit <= 0 || policy.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := strings.Join([]string{clientIP(r), r.Method, r.URL.Path}, "|")
			allowed, count, err := store.FixedWindowAllow(r.Context(), scope, policy.Limit, policy.Window)
			if err != nil {
				// Redis being down should not take request handling with it.
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded").
					WithDetails(map[string]any{"limit": policy.Limit, "count": count}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
