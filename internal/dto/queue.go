package dto

import "github.com/noah-isme/ascend-api/internal/models"

// DequeueRequest asks for the next question on behalf of a mentor.
// CompanyID defaults to the mentor's own company.
type DequeueRequest struct {
	MentorID  string `json:"mentor_id" validate:"required"`
	CompanyID string `json:"company_id"`
}

// DequeueResponse carries the dequeued question, if any.
type DequeueResponse struct {
	Question  *models.Question `json:"question"`
	QueueSize int              `json:"queue_size"`
}

// RequeueResponse reports whether a question is back in the queue.
type RequeueResponse struct {
	QuestionID string `json:"question_id"`
	Queued     bool   `json:"queued"`
}

// QueueSizeResponse is the number of waiting questions for a company.
type QueueSizeResponse struct {
	CompanyID string `json:"company_id"`
	Size      int    `json:"size"`
}
