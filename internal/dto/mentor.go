package dto

import "github.com/noah-isme/ascend-api/internal/models"

// RegisterMentorRequest creates an unverified mentor profile.
type RegisterMentorRequest struct {
	UserID    *string `json:"user_id"`
	FullName  string  `json:"full_name" validate:"required,max=120"`
	CompanyID string  `json:"company_id" validate:"required"`
	JobTitle  *string `json:"job_title" validate:"omitempty,max=120"`
}

// AvailabilityRequest toggles whether a mentor accepts questions.
type AvailabilityRequest struct {
	Accepting *bool `json:"accepting" validate:"required"`
}

// VerificationRequest approves or revokes a mentor.
type VerificationRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// TrustScoreResponse is returned by a single recompute.
type TrustScoreResponse struct {
	MentorID   string            `json:"mentor_id"`
	TrustScore int               `json:"trust_score"`
	Badge      models.TrustBadge `json:"badge"`
}

// BulkRecomputeResponse acknowledges a scheduled bulk recompute.
type BulkRecomputeResponse struct {
	JobID string `json:"job_id"`
}
