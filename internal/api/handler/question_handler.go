package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackit/qa-api/internal/api/metrics"
	"github.com/stackit/qa-api/internal/core/ports"
)

// QuestionHandler handles HTTP requests for questions and tags.
type QuestionHandler struct {
	service ports.QuestionService
}

func NewQuestionHandler(service ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// List handles GET /questions.
//
// @Summary      List questions
// @Tags         questions
// @Produce      json
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Param        tag    query     string  false  "Only questions with this tag"
// @Param        q      query     string  false  "Search title and body"
// @Success      200    {object}  questionListResponse
// @Failure      400    {object}  errorResponse
// @Router       /questions [get]
func (h *QuestionHandler) List(c echo.Context) error {
	var in ports.ListQuestionsInput
	if err := echo.QueryParamsBinder(c).
		Int("page", &in.Page).
		Int("limit", &in.Limit).
		String("tag", &in.Tag).
		String("q", &in.Search).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	res, err := h.service.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionListResponse(res))
}

// Create handles POST /questions.
//
// @Summary      Ask a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQuestionRequest  true  "Question"
// @Success      201   {object}  questionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /questions [post]
func (h *QuestionHandler) Create(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req createQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	q, err := h.service.Create(c.Request().Context(), me, ports.CreateQuestionInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return err
	}

	metrics.QuestionsPostedTotal.Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/questions/"+q.ID)
	return c.JSON(http.StatusCreated, toQuestionResponse(q))
}

// Get handles GET /questions/:id and counts a view for the caller.
//
// @Summary      Get a question with its answers
// @Tags         questions
// @Produce      json
// @Param        id   path      string  true  "Question id"
// @Success      200  {object}  questionDetailResponse
// @Failure      404  {object}  errorResponse
// @Router       /questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"), viewerKey(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionDetailResponse(detail))
}

// Delete handles DELETE /questions/:id.
//
// @Summary      Delete a question
// @Tags         questions
// @Security     BearerAuth
// @Param        id   path  string  true  "Question id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	me, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Tags handles GET /tags.
//
// @Summary      List tags
// @Tags         tags
// @Produce      json
// @Success      200  {array}  tagResponse
// @Router       /tags [get]
func (h *QuestionHandler) Tags(c echo.Context) error {
	tags, err := h.service.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTagResponses(tags))
}

// viewerKey identifies who is looking at a question for view dedup.
func viewerKey(c echo.Context) string {
	if me := OptionalIdentity(c); me != nil {
		return "user:" + me.ID
	}
	return "ip:" + c.RealIP()
}
