package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Cast handles POST /questions/:id/vote.
//
// @Summary      Vote on a question
// @Tags         votes
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string       true  "Question id"
// @Param        body  body  voteRequest  true  "1 or -1"
// @Success      201
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /questions/{id}/vote [post]
func (h *VoteHandler) Cast(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.Cast(c.Request().Context(), me, c.Param("id"), req.Value); err != nil {
		return err
	}

	direction := "up"
	if req.Value < 0 {
		direction = "down"
	}
	metrics.VotesCastTotal.WithLabelValues(direction).Inc()
	return c.NoContent(http.StatusCreated)
}

// Retract handles DELETE /questions/:id/vote.
//
// @Summary      Retract own vote
// @Tags         votes
// @Security     BearerAuth
// @Param        id   path  string  true  "Question id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /questions/{id}/vote [delete]
func (h *VoteHandler) Retract(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Retract(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
