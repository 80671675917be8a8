package models

import "time"

// ReferralStatus tracks mentor decisions on referral requests.
type ReferralStatus string

const (
	ReferralStatusPending  ReferralStatus = "pending"
	ReferralStatusApproved ReferralStatus = "approved"
	ReferralStatusRejected ReferralStatus = "rejected"
)

// Referral is a student's request to be referred by a mentor at their company.
type Referral struct {
	ID             string         `db:"id" json:"id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	MentorID       string         `db:"mentor_id" json:"mentor_id"`
	CompanyID      string         `db:"company_id" json:"company_id"`
	Message        string         `db:"message" json:"message"`
	Status         ReferralStatus `db:"status" json:"status"`
	MentorResponse *string        `db:"mentor_response" json:"mentor_response,omitempty"`
	RequestedAt    time.Time      `db:"requested_at" json:"requested_at"`
	RespondedAt    *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
}

// ReferralFilter scopes referral listings.
type ReferralFilter struct {
	StudentID string
	MentorID  string
	Status    *ReferralStatus
}
