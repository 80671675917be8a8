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

const referralColumns = `id, student_id, mentor_id, company_id, message, status, mentor_response, requested_at, responded_at`

// ReferralRepository persists referral requests.
type ReferralRepository struct {
	db *sqlx.DB
}

// NewReferralRepository constructs a ReferralRepository.
func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create inserts a pending referral request.
func (r *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	if referral.RequestedAt.IsZero() {
		referral.RequestedAt = time.Now().UTC()
	}
	if referral.Status == "" {
		referral.Status = models.ReferralStatusPending
	}
	const query = `INSERT INTO referrals (id, student_id, mentor_id, company_id, message, status, mentor_response, requested_at, responded_at)
		VALUES (:id, :student_id, :mentor_id, :company_id, :message, :status, :mentor_response, :requested_at, :responded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}

// FindByID fetches a referral by ID.
func (r *ReferralRepository) FindByID(ctx context.Context, id string) (*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE id = $1`
	var referral models.Referral
	if err := r.db.GetContext(ctx, &referral, query, id); err != nil {
		return nil, err
	}
	return &referral, nil
}

// Respond records the mentor's decision on a pending referral. It returns false when the referral was already decided.
func (r *ReferralRepository) Respond(ctx context.Context, id string, status models.ReferralStatus, message *string) (bool, error) {
	const query = `UPDATE referrals SET status = $2, mentor_response = $3, responded_at = $4 WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, message, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("respond referral: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("respond referral: %w", err)
	}
	return affected > 0, nil
}

// List returns referrals matching the filter, newest first.
func (r *ReferralRepository) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.MentorID != "" {
		args = append(args, filter.MentorID)
		conditions = append(conditions, fmt.Sprintf("mentor_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + referralColumns + ` FROM referrals`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY requested_at DESC`

	var items []models.Referral
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return items, nil
}
