package models

import "time"

// MatchingStats summarises the mentor pool available to the matcher.
type MatchingStats struct {
	TotalMentors         int     `db:"total_mentors" json:"total_mentors"`
	AvailableMentors     int     `db:"available_mentors" json:"available_mentors"`
	CompaniesWithMentors int     `db:"companies_with_mentors" json:"companies_with_mentors"`
	AverageTrustScore    float64 `db:"avg_trust_score" json:"avg_trust_score"`
}

// QueueStats summarises pending work and queue occupancy.
type QueueStats struct {
	TotalPending           int `json:"total_pending"`
	HighPriority           int `json:"high_priority"`
	CompaniesWithQuestions int `json:"companies_with_questions"`
	AvailableMentors       int `json:"available_mentors"`
	Queued                 int `json:"queued"`
	InFlight               int `json:"in_flight"`
}

// TrustMetrics is the breakdown of a mentor's trust score.
type TrustMetrics struct {
	MentorID        string     `json:"mentor_id"`
	TotalFeedback   int        `json:"total_feedback"`
	HelpfulCount    int        `json:"helpful_count"`
	InterviewCount  int        `json:"interview_count"`
	ReferralCount   int        `json:"referral_count"`
	NotHelpfulCount int        `json:"not_helpful_count"`
	UnansweredCount int        `json:"unanswered_count"`
	AverageRating   float64    `json:"average_rating"`
	CurrentScore    int        `json:"current_score"`
	Badge           TrustBadge `json:"badge"`
}

// FeedbackStats aggregates feedback outcomes across all mentors.
type FeedbackStats struct {
	TotalFeedback int                         `json:"total_feedback"`
	Counts        map[FeedbackOutcome]int     `json:"counts"`
	Percentages   map[FeedbackOutcome]float64 `json:"percentages,omitempty"`
	AverageRating float64                     `json:"average_rating"`
}

// SystemStats is a process-level snapshot of request, cache and routing counters.
type SystemStats struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	MatchesTotal             uint64    `json:"matches_total"`
	UnmatchedTotal           uint64    `json:"unmatched_total"`
	TrustRecomputes          uint64    `json:"trust_recomputes"`
	QueueDepth               int       `json:"queue_depth"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
