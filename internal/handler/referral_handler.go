package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type referralService interface {
	Request(ctx context.Context, req dto.CreateReferralRequest) (*models.Referral, error)
	Respond(ctx context.Context, id string, req dto.RespondReferralRequest) (*models.Referral, error)
	List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error)
}

// ReferralHandler exposes referral requests between students and mentors.
type ReferralHandler struct {
	service referralService
}

// NewReferralHandler builds a new handler.
func NewReferralHandler(service referralService) *ReferralHandler {
	return &ReferralHandler{service: service}
}

// Create godoc
// @Summary Ask a verified mentor for a referral
// @Tags Referrals
// @Accept json
// @Produce json
// @Param payload body dto.CreateReferralRequest true "Referral payload"
// @Success 201 {object} response.Envelope
// @Router /referrals [post]
func (h *ReferralHandler) Create(c *gin.Context) {
	var req dto.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid referral payload"))
		return
	}
	referral, err := h.service.Request(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, referral)
}

// Respond godoc
// @Summary Approve or reject a referral
// @Tags Referrals
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Param payload body dto.RespondReferralRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /referrals/{id}/respond [post]
func (h *ReferralHandler) Respond(c *gin.Context) {
	var req dto.RespondReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid referral response"))
		return
	}
	referral, err := h.service.Respond(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, referral)
}

// List godoc
// @Summary List referrals for a student or mentor
// @Tags Referrals
// @Produce json
// @Param student_id query string false "Student ID"
// @Param mentor_id query string false "Mentor ID"
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Envelope
// @Router /referrals [get]
func (h *ReferralHandler) List(c *gin.Context) {
	filter := models.ReferralFilter{
		StudentID: c.Query("student_id"),
		MentorID:  c.Query("mentor_id"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ReferralStatus(raw)
		filter.Status = &status
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}
