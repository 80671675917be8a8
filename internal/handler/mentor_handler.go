package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	"github.com/noah-isme/ascend-api/internal/service"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type mentorService interface {
	Register(ctx context.Context, req dto.RegisterMentorRequest) (*models.Mentor, error)
	Get(ctx context.Context, id string) (*models.Mentor, error)
	SetAvailability(ctx context.Context, id string, req dto.AvailabilityRequest) (*models.Mentor, error)
	SetVerified(ctx context.Context, id string, req dto.VerificationRequest) (*models.Mentor, error)
}

type mentorActivityService interface {
	Responses(ctx context.Context, filter models.ResponseFilter) ([]models.Response, *models.Pagination, error)
	Feedback(ctx context.Context, mentorID string) ([]models.Feedback, error)
	Dashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error)
}

type recommendationService interface {
	Recommendations(ctx context.Context, studentID string, limit int) ([]models.Mentor, error)
}

type trustService interface {
	Recompute(ctx context.Context, mentorID string) (int, error)
	Metrics(ctx context.Context, mentorID string) (*models.TrustMetrics, error)
	ScheduleBulkRecompute(enqueuer service.JobEnqueuer, reason string) (string, error)
}

// MentorHandler exposes mentor profiles, availability and trust endpoints.
type MentorHandler struct {
	mentors  mentorService
	activity mentorActivityService
	matcher  recommendationService
	trust    trustService
	enqueuer service.JobEnqueuer
}

// NewMentorHandler builds a new handler. enqueuer receives bulk trust recompute jobs.
func NewMentorHandler(mentors mentorService, activity mentorActivityService, matcher recommendationService, trust trustService, enqueuer service.JobEnqueuer) *MentorHandler {
	return &MentorHandler{mentors: mentors, activity: activity, matcher: matcher, trust: trust, enqueuer: enqueuer}
}

// Register godoc
// @Summary Register a mentor
// @Description New mentors start unverified at the default trust score.
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body dto.RegisterMentorRequest true "Mentor payload"
// @Success 201 {object} response.Envelope
// @Router /mentors [post]
func (h *MentorHandler) Register(c *gin.Context) {
	var req dto.RegisterMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor payload"))
		return
	}
	mentor, err := h.mentors.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// Get godoc
// @Summary Get a mentor
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id} [get]
func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.mentors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// SetAvailability godoc
// @Summary Toggle whether a mentor accepts questions
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Mentor ID"
// @Param payload body dto.AvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id}/availability [post]
func (h *MentorHandler) SetAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	mentor, err := h.mentors.SetAvailability(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// SetVerification godoc
// @Summary Approve or revoke a mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Mentor ID"
// @Param payload body dto.VerificationRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id}/verification [post]
func (h *MentorHandler) SetVerification(c *gin.Context) {
	var req dto.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}
	mentor, err := h.mentors.SetVerified(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// Responses godoc
// @Summary List a mentor's answers, newest first
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id}/responses [get]
func (h *MentorHandler) Responses(c *gin.Context) {
	filter := models.ResponseFilter{MentorID: c.Param("id")}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.activity.Responses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, pagination)
}

// Feedback godoc
// @Summary List feedback left on a mentor's answers
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id}/feedback [get]
func (h *MentorHandler) Feedback(c *gin.Context) {
	items, err := h.activity.Feedback(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Dashboard godoc
// @Summary Pending work and recent answers for a mentor
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id}/dashboard [get]
func (h *MentorHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.activity.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}

// Recommendations godoc
// @Summary Recommend mentors for a student
// @Tags Mentors
// @Produce json
// @Param student_id query string true "Student ID"
// @Param limit query int false "Maximum mentors (default 5)"
// @Success 200 {object} response.Envelope
// @Router /mentors/recommendations [get]
func (h *MentorHandler) Recommendations(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "limit must be a number"))
			return
		}
		limit = parsed
	}
	mentors, err := h.matcher.Recommendations(c.Request.Context(), studentID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors)
}

// Trust godoc
// @Summary Trust score breakdown for a mentor
// @Tags Trust
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id}/trust [get]
func (h *MentorHandler) Trust(c *gin.Context) {
	metrics, err := h.trust.Metrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics)
}

// RecomputeTrust godoc
// @Summary Recompute one mentor's trust score now
// @Tags Trust
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id}/trust/recompute [post]
func (h *MentorHandler) RecomputeTrust(c *gin.Context) {
	id := c.Param("id")
	score, err := h.trust.Recompute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TrustScoreResponse{MentorID: id, TrustScore: score, Badge: models.BadgeFor(score)})
}

// BulkRecomputeTrust godoc
// @Summary Schedule a trust recompute for every verified mentor
// @Tags Trust
// @Produce json
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /trust/recompute [post]
func (h *MentorHandler) BulkRecomputeTrust(c *gin.Context) {
	jobID, err := h.trust.ScheduleBulkRecompute(h.enqueuer, "manual")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.BulkRecomputeResponse{JobID: jobID})
}
