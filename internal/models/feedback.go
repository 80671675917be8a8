package models

import "time"

// FeedbackOutcome is the student-reported result of a mentor response.
type FeedbackOutcome string

const (
	OutcomeHelpful      FeedbackOutcome = "helpful"
	OutcomeGotInterview FeedbackOutcome = "got_interview"
	OutcomeGotReferral  FeedbackOutcome = "got_referral"
	OutcomeNotHelpful   FeedbackOutcome = "not_helpful"
)

// FeedbackOutcomes lists outcomes in display order.
var FeedbackOutcomes = []FeedbackOutcome{OutcomeHelpful, OutcomeGotInterview, OutcomeGotReferral, OutcomeNotHelpful}

// Feedback is the single live feedback record attached to an answered question.
type Feedback struct {
	ID         string          `db:"id" json:"id"`
	QuestionID string          `db:"question_id" json:"question_id"`
	ResponseID string          `db:"response_id" json:"response_id"`
	StudentID  string          `db:"student_id" json:"student_id"`
	MentorID   string          `db:"mentor_id" json:"mentor_id"`
	Outcome    FeedbackOutcome `db:"outcome" json:"outcome"`
	Rating     *int            `db:"rating" json:"rating,omitempty"`
	Comment    *string         `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// FeedbackOutcomeCount is one row of the per-outcome aggregate.
type FeedbackOutcomeCount struct {
	Outcome FeedbackOutcome `db:"outcome"`
	Count   int             `db:"count"`
}
