package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/api/handler"
	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/core/domain"
)

// SessionResolver turns an Authorization header into an identity.
type SessionResolver interface {
	Resolve(ctx context.Context, authorization string) (*domain.User, error)
}

// Auth resolves the bearer token on every request and injects the identity
// into context. Any rejection ends the request with 401.
func Auth(resolver SessionResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolver.Resolve(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if reason := rejectionReason(err); reason != "" {
					metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
					log.Debug().
						Str("reason", reason).
						Str("path", c.Path()).
						Msg("request not authenticated")
				}
				return err
			}

			handler.SetIdentity(c, user)
			return next(c)
		}
	}
}

// OptionalAuth injects the identity when a valid token is present and lets
// anonymous or badly authenticated requests through untouched.
func OptionalAuth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header != "" {
				if user, err := resolver.Resolve(c.Request().Context(), header); err == nil {
					handler.SetIdentity(c, user)
				}
			}
			return next(c)
		}
	}
}

// rejectionReason labels an authentication failure, or "" for store faults.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return "unknown_identity"
	case errors.Is(err, domain.ErrTokenRejected):
		if r := domain.RejectReason(err); r != "" {
			return string(r)
		}
		return string(domain.TokenMalformed)
	}
	return ""
}
