package models

import "time"

// Trust score bounds applied on every recompute.
const (
	DefaultTrustScore = 50
	MinTrustScore     = 0
	MaxTrustScore     = 100
)

// Mentor is an alumni profile answering student questions on behalf of a company.
type Mentor struct {
	ID                   string    `db:"id" json:"id"`
	UserID               *string   `db:"user_id" json:"user_id,omitempty"`
	FullName             string    `db:"full_name" json:"full_name"`
	CompanyID            string    `db:"company_id" json:"company_id"`
	JobTitle             *string   `db:"job_title" json:"job_title,omitempty"`
	TrustScore           int       `db:"trust_score" json:"trust_score"`
	IsVerified           bool      `db:"is_verified" json:"is_verified"`
	IsAcceptingQuestions bool      `db:"is_accepting_questions" json:"is_accepting_questions"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the mentor may be matched with new questions.
func (m *Mentor) Eligible() bool {
	return m != nil && m.IsVerified && m.IsAcceptingQuestions
}

// TrustBadge is the coarse tier displayed next to a mentor.
type TrustBadge string

const (
	BadgeBronze TrustBadge = "Bronze"
	BadgeSilver TrustBadge = "Silver"
	BadgeGold   TrustBadge = "Gold"
)

// BadgeFor maps a trust score to its badge.
func BadgeFor(score int) TrustBadge {
	switch {
	case score >= 75:
		return BadgeGold
	case score >= 50:
		return BadgeSilver
	default:
		return BadgeBronze
	}
}

// ClampTrustScore bounds a raw score to the allowed range.
func ClampTrustScore(score int) int {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}

// MentorDashboard is a mentor's own view of pending work and past answers.
type MentorDashboard struct {
	MentorID             string     `json:"mentor_id"`
	TrustScore           int        `json:"trust_score"`
	Badge                TrustBadge `json:"badge"`
	IsAcceptingQuestions bool       `json:"is_accepting_questions"`
	PendingAtCompany     int        `json:"pending_at_company"`
	AnsweredCount        int        `json:"answered_count"`
	RecentResponses      []Response `json:"recent_responses"`
}
