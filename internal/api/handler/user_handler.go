package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

// UserHandler serves identity endpoints behind the Auth middleware.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me returns the caller's own identity.
//
// @Summary      Current identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(me))
}

// List returns every identity. ADMIN only.
//
// @Summary      List identities
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	users, err := h.service.List(c.Request().Context(), me)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// SetRole changes an identity's role. ADMIN only.
//
// @Summary      Change role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User id"
// @Param        body  body      setRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/role [patch]
func (h *UserHandler) SetRole(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.SetRole(c.Request().Context(), me, c.Param("id"), domain.Role(strings.ToUpper(req.Role)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete removes an identity and everything it authored.
//
// @Summary      Delete identity
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
