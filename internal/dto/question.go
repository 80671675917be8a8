package dto

import "github.com/noah-isme/ascend-api/internal/models"

// AskQuestionRequest is the payload for submitting a question to a company.
type AskQuestionRequest struct {
	StudentID string                 `json:"student_id" validate:"required"`
	CompanyID string                 `json:"company_id" validate:"required"`
	Title     string                 `json:"title" validate:"required,max=200"`
	Body      string                 `json:"body" validate:"required"`
	Category  *string                `json:"category" validate:"omitempty,max=50"`
	Urgency   models.QuestionUrgency `json:"urgency" validate:"omitempty,oneof=Normal High"`
}

// AskQuestionResult reports where a new question ended up.
type AskQuestionResult struct {
	Question      *models.Question `json:"question"`
	MatchedMentor *models.Mentor   `json:"matched_mentor,omitempty"`
	Queued        bool             `json:"queued"`
	QueueSize     int              `json:"queue_size"`
}

// AnswerQuestionRequest is a mentor's answer to a pending question.
type AnswerQuestionRequest struct {
	MentorID string `json:"mentor_id" validate:"required"`
	Body     string `json:"body" validate:"required"`
}
