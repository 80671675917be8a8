package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ascend-api/internal/models"
)

const feedbackColumns = `id, question_id, response_id, student_id, mentor_id, outcome, rating, comment, created_at, updated_at`

// FeedbackRepository persists student feedback on mentor responses.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Upsert inserts feedback or overwrites the existing record for the same question.
// ID and timestamps are refreshed from the stored row.
func (r *FeedbackRepository) Upsert(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	const query = `INSERT INTO feedback (id, question_id, response_id, student_id, mentor_id, outcome, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (question_id) DO UPDATE SET
			response_id = EXCLUDED.response_id,
			student_id = EXCLUDED.student_id,
			mentor_id = EXCLUDED.mentor_id,
			outcome = EXCLUDED.outcome,
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		feedback.ID, feedback.QuestionID, feedback.ResponseID, feedback.StudentID, feedback.MentorID,
		feedback.Outcome, feedback.Rating, feedback.Comment, feedback.CreatedAt, feedback.UpdatedAt)
	if err := row.Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt); err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}
	return nil
}

// ListByMentor returns every feedback record left for a mentor, newest first.
func (r *FeedbackRepository) ListByMentor(ctx context.Context, mentorID string) ([]models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE mentor_id = $1 ORDER BY created_at DESC`
	var items []models.Feedback
	if err := r.db.SelectContext(ctx, &items, query, mentorID); err != nil {
		return nil, fmt.Errorf("list mentor feedback: %w", err)
	}
	return items, nil
}

// OutcomeCounts groups feedback by outcome. An empty mentorID aggregates across all mentors.
func (r *FeedbackRepository) OutcomeCounts(ctx context.Context, mentorID string) ([]models.FeedbackOutcomeCount, error) {
	query := `SELECT outcome, COUNT(*) AS count FROM feedback`
	args := []interface{}{}
	if mentorID != "" {
		query += ` WHERE mentor_id = $1`
		args = append(args, mentorID)
	}
	query += ` GROUP BY outcome ORDER BY outcome`
	var rows []models.FeedbackOutcomeCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("feedback outcome counts: %w", err)
	}
	return rows, nil
}

// AverageRating averages the rated feedback. Unrated feedback is ignored and zero is returned when nothing is rated.
func (r *FeedbackRepository) AverageRating(ctx context.Context, mentorID string) (float64, error) {
	query := `SELECT COALESCE(AVG(rating), 0) FROM feedback WHERE rating IS NOT NULL`
	args := []interface{}{}
	if mentorID != "" {
		query += ` AND mentor_id = $1`
		args = append(args, mentorID)
	}
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, args...); err != nil {
		return 0, fmt.Errorf("feedback average rating: %w", err)
	}
	return avg, nil
}
