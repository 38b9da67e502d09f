package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/core/ports"
)

type AnswerHandler struct {
	service ports.AnswerService
}

func NewAnswerHandler(service ports.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: service}
}

// Create handles POST /questions/:id/answers.
//
// @Summary      Answer a question
// @Tags         answers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Question id"
// @Param        body  body      createAnswerRequest  true  "Answer"
// @Success      201   {object}  answerResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /questions/{id}/answers [post]
func (h *AnswerHandler) Create(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req createAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	a, err := h.service.Create(c.Request().Context(), me, c.Param("id"), req.Body)
	if err != nil {
		return err
	}

	metrics.AnswersPostedTotal.Inc()
	return c.JSON(http.StatusCreated, toAnswerResponse(a))
}

// List handles GET /questions/:id/answers.
//
// @Summary      List answers, accepted first
// @Tags         answers
// @Produce      json
// @Param        id   path      string  true  "Question id"
// @Success      200  {array}   answerResponse
// @Failure      404  {object}  errorResponse
// @Router       /questions/{id}/answers [get]
func (h *AnswerHandler) List(c echo.Context) error {
	answers, err := h.service.ListByQuestion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnswerResponses(answers))
}

// Accept handles POST /answers/:id/accept.
//
// @Summary      Accept an answer
// @Tags         answers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Answer id"
// @Success      200  {object}  answerResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /answers/{id}/accept [post]
func (h *AnswerHandler) Accept(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	a, err := h.service.Accept(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnswerResponse(a))
}

// Delete handles DELETE /answers/:id.
//
// @Summary      Delete an answer
// @Tags         answers
// @Security     BearerAuth
// @Param        id   path  string  true  "Answer id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /answers/{id} [delete]
func (h *AnswerHandler) Delete(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
