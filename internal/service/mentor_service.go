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

type mentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	Create(ctx context.Context, mentor *models.Mentor) error
	SetAccepting(ctx context.Context, id string, accepting bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
}

type mentorCompanyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

type mentorCacheInvalidator interface {
	InvalidateMentorCaches(ctx context.Context)
}

// MentorService manages mentor profiles and their availability.
type MentorService struct {
	repo      mentorRepository
	companies mentorCompanyRepository
	caches    mentorCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMentorService constructs the mentor service. caches may be nil.
func NewMentorService(repo mentorRepository, companies mentorCompanyRepository, caches mentorCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MentorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{repo: repo, companies: companies, caches: caches, validator: validate, logger: logger}
}

// Register creates an unverified mentor at the default trust score.
func (s *MentorService) Register(ctx context.Context, req dto.RegisterMentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentor payload")
	}
	if _, err := s.companies.FindByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	mentor := &models.Mentor{
		UserID:               req.UserID,
		FullName:             req.FullName,
		CompanyID:            req.CompanyID,
		JobTitle:             req.JobTitle,
		TrustScore:           models.DefaultTrustScore,
		IsVerified:           false,
		IsAcceptingQuestions: true,
	}
	if err := s.repo.Create(ctx, mentor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentor")
	}
	s.invalidate(ctx)
	return mentor, nil
}

// Get returns a mentor by ID.
func (s *MentorService) Get(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor, nil
}

// SetAvailability sets whether the mentor takes new questions.
func (s *MentorService) SetAvailability(ctx context.Context, id string, req dto.AvailabilityRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	mentor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAccepting(ctx, id, *req.Accepting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	mentor.IsAcceptingQuestions = *req.Accepting
	s.invalidate(ctx)
	s.logger.Info("mentor availability changed", zap.String("mentor_id", id), zap.Bool("accepting", mentor.IsAcceptingQuestions))
	return mentor, nil
}

// SetVerified approves or revokes a mentor, which gates matching eligibility.
func (s *MentorService) SetVerified(ctx context.Context, id string, req dto.VerificationRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	mentor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetVerified(ctx, id, *req.Verified); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update verification")
	}
	mentor.IsVerified = *req.Verified
	s.invalidate(ctx)
	s.logger.Info("mentor verification changed", zap.String("mentor_id", id), zap.Bool("verified", mentor.IsVerified))
	return mentor, nil
}

func (s *MentorService) invalidate(ctx context.Context) {
	if s.caches != nil {
		s.caches.InvalidateMentorCaches(ctx)
	}
}
