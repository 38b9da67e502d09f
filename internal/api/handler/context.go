package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/core/domain"
)

const identityKey = "identity"

// SetIdentity stores the resolved identity on the request context.
func SetIdentity(c echo.Context, u *domain.User) {
	c.Set(identityKey, u)
}

// CurrentIdentity returns the identity injected by the Auth middleware.
// A route reached without it is a wiring bug, but callers still get a 401
// rather than a nil dereference.
func CurrentIdentity(c echo.Context) (*domain.User, error) {
	u, ok := c.Get(identityKey).(*domain.User)
	if !ok || u == nil {
		return nil, domain.ErrMissingToken
	}
	return u, nil
}

// OptionalIdentity returns the identity if the request carried a valid token.
func OptionalIdentity(c echo.Context) *domain.User {
	u, _ := c.Get(identityKey).(*domain.User)
	return u
}
