package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/core/ports"
)

type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List handles GET /admin/activity.
//
// @Summary      Recent activity
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        actor  query     string  false  "Actor id"
// @Param        kind   query     string  false  "Event kind"
// @Param        limit  query     int     false  "Max events (default 50)"
// @Success      200    {array}   activityResponse
// @Failure      403    {object}  errorResponse
// @Router       /admin/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	var f ports.ActivityFilter
	if err := echo.QueryParamsBinder(c).
		String("actor", &f.ActorID).
		String("kind", &f.Kind).
		Int("limit", &f.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	events, err := h.service.List(c.Request().Context(), me, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActivityResponses(events))
}
