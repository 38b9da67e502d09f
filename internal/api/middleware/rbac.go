package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/api/handler"
	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/service"
)

// RequireRole enforces a minimum role on every route it wraps. It must run
// after Auth.
func RequireRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			me, err := handler.CurrentIdentity(c)
			if err != nil {
				return err
			}
			if err := service.Require(me, min); err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					metrics.ForbiddenTotal.Inc()
				}
				return err
			}
			return next(c)
		}
	}
}
