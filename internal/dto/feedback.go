package dto

import "github.com/noah-isme/ascend-api/internal/models"

// SubmitFeedbackRequest carries a student's verdict on an answer.
type SubmitFeedbackRequest struct {
	QuestionID string                 `json:"-"`
	StudentID  string                 `json:"student_id" validate:"required"`
	Outcome    models.FeedbackOutcome `json:"outcome" validate:"required,oneof=helpful got_interview got_referral not_helpful"`
	Rating     *int                   `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment    *string                `json:"comment" validate:"omitempty,max=2000"`
}

// FeedbackResult is the stored feedback plus the mentor's refreshed trust.
type FeedbackResult struct {
	Feedback   *models.Feedback  `json:"feedback"`
	TrustScore int               `json:"trust_score"`
	Badge      models.TrustBadge `json:"badge"`
}
