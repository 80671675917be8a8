package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ascend-api/internal/models"
)

const mentorColumns = `id, user_id, full_name, company_id, job_title, trust_score, is_verified, is_accepting_questions, created_at, updated_at`

// MentorRepository manages persistence for alumni mentors.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE id = $1`
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// Create inserts a new mentor. New mentors start at the default trust score.
func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now

	const query = `INSERT INTO mentors (id, user_id, full_name, company_id, job_title, trust_score, is_verified, is_accepting_questions, created_at, updated_at)
		VALUES (:id, :user_id, :full_name, :company_id, :job_title, :trust_score, :is_verified, :is_accepting_questions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// ListEligibleByCompany returns verified mentors accepting questions at a company, oldest first.
func (r *MentorRepository) ListEligibleByCompany(ctx context.Context, companyID string) ([]models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors
		WHERE company_id = $1 AND is_verified = TRUE AND is_accepting_questions = TRUE
		ORDER BY created_at ASC, id ASC`
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query, companyID); err != nil {
		return nil, fmt.Errorf("list eligible mentors: %w", err)
	}
	return mentors, nil
}

// FindTopEligible returns the eligible mentor with the highest trust score system-wide.
func (r *MentorRepository) FindTopEligible(ctx context.Context) (*models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors
		WHERE is_verified = TRUE AND is_accepting_questions = TRUE
		ORDER BY trust_score DESC, created_at ASC, id ASC LIMIT 1`
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// ListTopEligible returns eligible mentors ordered by trust score, optionally scoped to companies.
func (r *MentorRepository) ListTopEligible(ctx context.Context, companyIDs []string, limit int) ([]models.Mentor, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE is_verified = TRUE AND is_accepting_questions = TRUE`
	args := []interface{}{}
	if len(companyIDs) > 0 {
		query += ` AND company_id = ANY($1)`
		args = append(args, pq.Array(companyIDs))
	}
	query += fmt.Sprintf(` ORDER BY trust_score DESC, created_at ASC, id ASC LIMIT %d`, limit)

	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query, args...); err != nil {
		return nil, fmt.Errorf("list top mentors: %w", err)
	}
	return mentors, nil
}

// ListVerified returns every verified mentor regardless of availability.
func (r *MentorRepository) ListVerified(ctx context.Context) ([]models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE is_verified = TRUE ORDER BY created_at ASC, id ASC`
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query); err != nil {
		return nil, fmt.Errorf("list verified mentors: %w", err)
	}
	return mentors, nil
}

// UpdateTrustScore persists a recomputed trust score.
func (r *MentorRepository) UpdateTrustScore(ctx context.Context, id string, score int) error {
	const query = `UPDATE mentors SET trust_score = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score, time.Now().UTC()); err != nil {
		return fmt.Errorf("update trust score: %w", err)
	}
	return nil
}

// SetAccepting toggles whether a mentor takes new questions.
func (r *MentorRepository) SetAccepting(ctx context.Context, id string, accepting bool) error {
	const query = `UPDATE mentors SET is_accepting_questions = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, accepting, time.Now().UTC()); err != nil {
		return fmt.Errorf("set mentor availability: %w", err)
	}
	return nil
}

// SetVerified approves or revokes a mentor's verification.
func (r *MentorRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	const query = `UPDATE mentors SET is_verified = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, verified, time.Now().UTC()); err != nil {
		return fmt.Errorf("set mentor verification: %w", err)
	}
	return nil
}

// CountAvailable counts eligible mentors system-wide.
func (r *MentorRepository) CountAvailable(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM mentors WHERE is_verified = TRUE AND is_accepting_questions = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count available mentors: %w", err)
	}
	return total, nil
}

// MatchingStats aggregates the verified mentor pool. The average defaults to the starting trust score.
func (r *MentorRepository) MatchingStats(ctx context.Context) (*models.MatchingStats, error) {
	const query = `SELECT
		COUNT(*) AS total_mentors,
		COUNT(*) FILTER (WHERE is_accepting_questions) AS available_mentors,
		COUNT(DISTINCT company_id) AS companies_with_mentors,
		COALESCE(AVG(trust_score), 50) AS avg_trust_score
		FROM mentors WHERE is_verified = TRUE`
	var stats models.MatchingStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("matching stats: %w", err)
	}
	return &stats, nil
}

// CompanySummaries returns verified and available mentor counts for every company.
func (r *MentorRepository) CompanySummaries(ctx context.Context) ([]models.CompanyMentorSummary, error) {
	const query = `SELECT c.id AS company_id, c.name AS company_name,
		COUNT(m.id) AS verified_count,
		COUNT(m.id) FILTER (WHERE m.is_accepting_questions) AS available_count
		FROM companies c
		LEFT JOIN mentors m ON m.company_id = c.id AND m.is_verified = TRUE
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`
	var rows []models.CompanyMentorSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("company mentor summaries: %w", err)
	}
	return rows, nil
}
