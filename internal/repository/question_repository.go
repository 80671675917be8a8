package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ascend-api/internal/models"
)

const defaultPageSize = 10

const questionColumns = `id, student_id, company_id, title, body, category, urgency, status, target_mentor_id, created_at`

// QuestionRepository manages persistence for student questions and their answers.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository constructs a QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a pending question.
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	if question.Status == "" {
		question.Status = models.QuestionStatusPending
	}
	if question.Urgency == "" {
		question.Urgency = models.UrgencyNormal
	}
	const query = `INSERT INTO questions (id, student_id, company_id, title, body, category, urgency, status, target_mentor_id, created_at)
		VALUES (:id, :student_id, :company_id, :title, :body, :category, :urgency, :status, :target_mentor_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// FindByID fetches a question by ID.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	var question models.Question
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		return nil, err
	}
	return &question, nil
}

// List pages through questions matching the filter, newest first.
func (r *QuestionRepository) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error) {
	base := "FROM questions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(body) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	_, size, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", questionColumns, base, size, offset)
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}
	return questions, total, nil
}

// ListPending returns every pending question, oldest first.
func (r *QuestionRepository) ListPending(ctx context.Context) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE status = 'pending' ORDER BY created_at ASC, id ASC`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query); err != nil {
		return nil, fmt.Errorf("list pending questions: %w", err)
	}
	return questions, nil
}

// CountPendingByCompany counts pending questions addressed to a company.
func (r *QuestionRepository) CountPendingByCompany(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM questions WHERE company_id = $1 AND status = 'pending'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID); err != nil {
		return 0, fmt.Errorf("count pending questions: %w", err)
	}
	return total, nil
}

// CountStaleByCompany counts a company's pending questions created before the cutoff.
func (r *QuestionRepository) CountStaleByCompany(ctx context.Context, companyID string, before time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM questions WHERE company_id = $1 AND status = 'pending' AND created_at < $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID, before); err != nil {
		return 0, fmt.Errorf("count stale questions: %w", err)
	}
	return total, nil
}

// CountPending counts pending questions, optionally restricted to one urgency.
func (r *QuestionRepository) CountPending(ctx context.Context, urgency *models.QuestionUrgency) (int, error) {
	query := `SELECT COUNT(*) FROM questions WHERE status = 'pending'`
	args := []interface{}{}
	if urgency != nil {
		query += ` AND urgency = $1`
		args = append(args, *urgency)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count pending questions: %w", err)
	}
	return total, nil
}

// ListCompanyIDsByStudent returns the distinct companies a student has asked about.
func (r *QuestionRepository) ListCompanyIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT DISTINCT company_id FROM questions WHERE student_id = $1 ORDER BY company_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list student companies: %w", err)
	}
	return ids, nil
}

// Answer records a response and flips the question to answered in one transaction.
// It returns false when the question was no longer pending.
func (r *QuestionRepository) Answer(ctx context.Context, resp *models.Response) (bool, error) {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin answer tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE questions SET status = 'answered' WHERE id = $1 AND status = 'pending'`, resp.QuestionID)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("mark question answered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("mark question answered: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	const insert = `INSERT INTO responses (id, question_id, mentor_id, body, helpful_count, created_at)
		VALUES (:id, :question_id, :mentor_id, :body, :helpful_count, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, resp); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("create response: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit answer tx: %w", err)
	}
	return true, nil
}

// pageBounds clamps a requested page to sane values and returns the offset for it.
func pageBounds(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = defaultPageSize
	}
	return page, size, (page - 1) * size
}
