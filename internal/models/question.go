package models

import "time"

// QuestionUrgency controls where a question is placed in the queue.
type QuestionUrgency string

const (
	UrgencyNormal QuestionUrgency = "Normal"
	UrgencyHigh   QuestionUrgency = "High"
)

// Priority returns the heap priority for the urgency class.
func (u QuestionUrgency) Priority() int {
	if u == UrgencyHigh {
		return 1
	}
	return 0
}

// QuestionStatus is the two-state lifecycle of a question.
type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusAnswered QuestionStatus = "answered"
)

// Question is a student question addressed to a company.
type Question struct {
	ID             string          `db:"id" json:"id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	CompanyID      string          `db:"company_id" json:"company_id"`
	Title          string          `db:"title" json:"title"`
	Body           string          `db:"body" json:"body"`
	Category       *string         `db:"category" json:"category,omitempty"`
	Urgency        QuestionUrgency `db:"urgency" json:"urgency"`
	Status         QuestionStatus  `db:"status" json:"status"`
	TargetMentorID *string         `db:"target_mentor_id" json:"target_mentor_id,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// IsPending reports whether the question still awaits an answer.
func (q *Question) IsPending() bool {
	return q != nil && q.Status == QuestionStatusPending
}

// Response is a mentor's answer to a question.
type Response struct {
	ID           string    `db:"id" json:"id"`
	QuestionID   string    `db:"question_id" json:"question_id"`
	MentorID     string    `db:"mentor_id" json:"mentor_id"`
	Body         string    `db:"body" json:"body"`
	HelpfulCount int       `db:"helpful_count" json:"helpful_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Assignment pairs a pending question with the mentor selected for it.
type Assignment struct {
	QuestionID string `json:"question_id"`
	MentorID   string `json:"mentor_id"`
	MentorName string `json:"mentor_name"`
}
