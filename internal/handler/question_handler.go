package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type questionService interface {
	Ask(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResult, error)
	Get(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, *models.Pagination, error)
	Answer(ctx context.Context, questionID string, req dto.AnswerQuestionRequest) (*models.Response, error)
}

type questionMatcher interface {
	MatchQuestion(ctx context.Context, questionID string) (*models.Mentor, error)
}

type feedbackSubmitter interface {
	Submit(ctx context.Context, req dto.SubmitFeedbackRequest) (*dto.FeedbackResult, error)
}

// QuestionHandler exposes the question lifecycle endpoints.
type QuestionHandler struct {
	questions questionService
	matcher   questionMatcher
	feedback  feedbackSubmitter
}

// NewQuestionHandler builds a new handler.
func NewQuestionHandler(questions questionService, matcher questionMatcher, feedback feedbackSubmitter) *QuestionHandler {
	return &QuestionHandler{questions: questions, matcher: matcher, feedback: feedback}
}

// Ask godoc
// @Summary Submit a question to a company
// @Tags Questions
// @Accept json
// @Produce json
// @Param payload body dto.AskQuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /questions [post]
func (h *QuestionHandler) Ask(c *gin.Context) {
	var req dto.AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question payload"))
		return
	}
	result, err := h.questions.Ask(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List questions
// @Description With status=answered and a search term this is the knowledge base of earlier answers.
// @Tags Questions
// @Produce json
// @Param status query string false "pending or answered"
// @Param company_id query string false "Company ID"
// @Param q query string false "Search in title and body"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} response.Envelope
// @Router /questions [get]
func (h *QuestionHandler) List(c *gin.Context) {
	filter := models.QuestionFilter{
		CompanyID: c.Query("company_id"),
		Search:    strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.QuestionStatus(strings.ToLower(raw))
		if status != models.QuestionStatusPending && status != models.QuestionStatusAnswered {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be pending or answered"))
			return
		}
		filter.Status = &status
	}
	filter.Page, filter.PageSize = pageParams(c)

	questions, pagination, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, questions, pagination)
}

// Get godoc
// @Summary Get a question
// @Tags Questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /questions/{id} [get]
func (h *QuestionHandler) Get(c *gin.Context) {
	question, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question)
}

// Match godoc
// @Summary Find the best mentor for a question
// @Tags Questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /questions/{id}/match [get]
func (h *QuestionHandler) Match(c *gin.Context) {
	mentor, err := h.matcher.MatchQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if mentor == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNoEligibleMentor, "no eligible mentor available"))
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// Answer godoc
// @Summary Answer a pending question
// @Tags Questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.AnswerQuestionRequest true "Answer payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /questions/{id}/answer [post]
func (h *QuestionHandler) Answer(c *gin.Context) {
	var req dto.AnswerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}
	resp, err := h.questions.Answer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Feedback godoc
// @Summary Submit feedback on an answered question
// @Description Replaces earlier feedback for the same question and recomputes the mentor's trust score.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.SubmitFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /questions/{id}/feedback [post]
func (h *QuestionHandler) Feedback(c *gin.Context) {
	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	req.QuestionID = c.Param("id")
	result, err := h.feedback.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// pageParams reads page and limit; unparsable values fall back to the defaults.
func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 10
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		size = v
	}
	return page, size
}
