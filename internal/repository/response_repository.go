package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ascend-api/internal/models"
)

const responseColumns = `id, question_id, mentor_id, body, helpful_count, created_at`

// ResponseRepository reads mentor responses.
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository constructs a ResponseRepository.
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// FindByQuestionID returns the response recorded for a question.
func (r *ResponseRepository) FindByQuestionID(ctx context.Context, questionID string) (*models.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE question_id = $1 ORDER BY created_at ASC LIMIT 1`
	var resp models.Response
	if err := r.db.GetContext(ctx, &resp, query, questionID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListByMentor pages through a mentor's responses, newest first.
func (r *ResponseRepository) ListByMentor(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error) {
	_, size, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM responses WHERE mentor_id = $1 ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", responseColumns, size, offset)
	var items []models.Response
	if err := r.db.SelectContext(ctx, &items, query, filter.MentorID); err != nil {
		return nil, 0, fmt.Errorf("list mentor responses: %w", err)
	}
	total, err := r.CountByMentor(ctx, filter.MentorID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountByMentor counts every response a mentor has recorded.
func (r *ResponseRepository) CountByMentor(ctx context.Context, mentorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM responses WHERE mentor_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, mentorID); err != nil {
		return 0, fmt.Errorf("count mentor responses: %w", err)
	}
	return total, nil
}

// CountPendingLoad counts a mentor's responses attached to questions still marked pending.
func (r *ResponseRepository) CountPendingLoad(ctx context.Context, mentorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM responses r JOIN questions q ON q.id = r.question_id WHERE r.mentor_id = $1 AND q.status = 'pending'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, mentorID); err != nil {
		return 0, fmt.Errorf("count mentor load: %w", err)
	}
	return total, nil
}
