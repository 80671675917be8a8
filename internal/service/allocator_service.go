package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

type allocatorMentorRepository interface {
	ListEligibleByCompany(ctx context.Context, companyID string) ([]models.Mentor, error)
}

type allocatorQuestionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	ListPending(ctx context.Context) ([]models.Question, error)
}

type allocatorResponseRepository interface {
	CountPendingLoad(ctx context.Context, mentorID string) (int, error)
}

// AllocatorService spreads pending questions over a company's mentors by load.
type AllocatorService struct {
	mentors   allocatorMentorRepository
	questions allocatorQuestionRepository
	responses allocatorResponseRepository
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAllocatorService constructs the load balancer.
func NewAllocatorService(mentors allocatorMentorRepository, questions allocatorQuestionRepository, responses allocatorResponseRepository, metrics *MetricsService, logger *zap.Logger) *AllocatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocatorService{mentors: mentors, questions: questions, responses: responses, metrics: metrics, logger: logger}
}

// AssignToMentor picks the least loaded eligible mentor at the question's company.
// Equal loads prefer the higher trust score, then store order. Nil means nobody is available.
func (s *AllocatorService) AssignToMentor(ctx context.Context, question *models.Question) (*models.Mentor, error) {
	mentors, err := s.mentors.ListEligibleByCompany(ctx, question.CompanyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentors")
	}

	var (
		best    *models.Mentor
		minLoad int
	)
	for i := range mentors {
		candidate := &mentors[i]
		if !candidate.Eligible() {
			continue
		}
		load, err := s.responses.CountPendingLoad(ctx, candidate.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute mentor load")
		}
		if best == nil || load < minLoad || (load == minLoad && candidate.TrustScore > best.TrustScore) {
			best = candidate
			minLoad = load
		}
	}
	if best != nil {
		s.metrics.IncAssignments()
	}
	return best, nil
}

// AssignQuestion resolves a pending question and assigns it.
func (s *AllocatorService) AssignQuestion(ctx context.Context, questionID string) (*models.Assignment, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	if !question.IsPending() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "question already answered")
	}
	mentor, err := s.AssignToMentor(ctx, question)
	if err != nil {
		return nil, err
	}
	if mentor == nil {
		return nil, appErrors.Clone(appErrors.ErrNoEligibleMentor, "no available mentor at this company")
	}
	return &models.Assignment{QuestionID: question.ID, MentorID: mentor.ID, MentorName: mentor.FullName}, nil
}

// DistributeAll assigns every pending question independently. Loads are read per
// question and are not adjusted for earlier picks in the same batch, so one mentor
// may receive several questions in a single run.
func (s *AllocatorService) DistributeAll(ctx context.Context) ([]models.Assignment, error) {
	pending, err := s.questions.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending questions")
	}

	assignments := make([]models.Assignment, 0, len(pending))
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return assignments, err
		}
		mentor, err := s.AssignToMentor(ctx, &pending[i])
		if err != nil {
			return assignments, err
		}
		if mentor == nil {
			continue
		}
		assignments = append(assignments, models.Assignment{
			QuestionID: pending[i].ID,
			MentorID:   mentor.ID,
			MentorName: mentor.FullName,
		})
	}
	s.logger.Info("distributed pending questions",
		zap.Int("pending", len(pending)),
		zap.Int("assigned", len(assignments)))
	return assignments, nil
}
