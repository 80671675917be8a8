package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

type referralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	FindByID(ctx context.Context, id string) (*models.Referral, error)
	Respond(ctx context.Context, id string, status models.ReferralStatus, message *string) (bool, error)
	List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error)
}

type referralMentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

// ReferralService handles referral requests between students and mentors.
type ReferralService struct {
	repo      referralRepository
	mentors   referralMentorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReferralService constructs the referral service.
func NewReferralService(repo referralRepository, mentors referralMentorRepository, validate *validator.Validate, logger *zap.Logger) *ReferralService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralService{repo: repo, mentors: mentors, validator: validate, logger: logger}
}

// Request files a pending referral with a mentor at the mentor's company.
func (s *ReferralService) Request(ctx context.Context, req dto.CreateReferralRequest) (*models.Referral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral payload")
	}
	mentor, err := s.mentors.FindByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	if !mentor.IsVerified {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "mentor is not verified")
	}

	referral := &models.Referral{
		StudentID: req.StudentID,
		MentorID:  mentor.ID,
		CompanyID: mentor.CompanyID,
		Message:   req.Message,
		Status:    models.ReferralStatusPending,
	}
	if err := s.repo.Create(ctx, referral); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create referral")
	}
	return referral, nil
}

// Respond approves or rejects a pending referral addressed to the mentor.
func (s *ReferralService) Respond(ctx context.Context, id string, req dto.RespondReferralRequest) (*models.Referral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral response")
	}
	referral, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referral not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load referral")
	}
	if referral.MentorID != req.MentorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "referral belongs to another mentor")
	}
	if referral.Status != models.ReferralStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "referral already decided")
	}

	ok, err := s.repo.Respond(ctx, id, req.Status, req.Message)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update referral")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "referral already decided")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload referral")
	}
	s.logger.Info("referral decided", zap.String("referral_id", id), zap.String("status", string(req.Status)))
	return updated, nil
}

// List returns referrals filtered by student, mentor or status.
func (s *ReferralService) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error) {
	if filter.StudentID == "" && filter.MentorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id or mentor_id is required")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list referrals")
	}
	if items == nil {
		items = []models.Referral{}
	}
	return items, nil
}
