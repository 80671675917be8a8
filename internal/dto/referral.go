package dto

import "github.com/noah-isme/ascend-api/internal/models"

// CreateReferralRequest asks a mentor for a referral at their company.
type CreateReferralRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	MentorID  string `json:"mentor_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// RespondReferralRequest is the mentor's decision.
type RespondReferralRequest struct {
	MentorID string                `json:"mentor_id" validate:"required"`
	Status   models.ReferralStatus `json:"status" validate:"required,oneof=approved rejected"`
	Message  *string               `json:"message" validate:"omitempty,max=2000"`
}
