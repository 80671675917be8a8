package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

type feedbackQuestionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
}

type feedbackResponseRepository interface {
	FindByQuestionID(ctx context.Context, questionID string) (*models.Response, error)
}

type feedbackRepository interface {
	Upsert(ctx context.Context, feedback *models.Feedback) error
	OutcomeCounts(ctx context.Context, mentorID string) ([]models.FeedbackOutcomeCount, error)
	AverageRating(ctx context.Context, mentorID string) (float64, error)
}

type trustRecomputer interface {
	Recompute(ctx context.Context, mentorID string) (int, error)
	ScheduleRecompute(enqueuer JobEnqueuer, mentorID string) (string, error)
}

// FeedbackService records student feedback and feeds it into the trust engine.
type FeedbackService struct {
	questions feedbackQuestionRepository
	responses feedbackResponseRepository
	feedback  feedbackRepository
	trust     trustRecomputer
	retries   JobEnqueuer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs the feedback manager. retries receives trust
// recomputes that failed inline and may be nil.
func NewFeedbackService(
	questions feedbackQuestionRepository,
	responses feedbackResponseRepository,
	feedback feedbackRepository,
	trust trustRecomputer,
	retries JobEnqueuer,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		questions: questions,
		responses: responses,
		feedback:  feedback,
		trust:     trust,
		retries:   retries,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Submit stores or replaces the feedback for an answered question and recomputes
// the answering mentor's trust score before returning.
//
// The feedback is committed before the recompute. If the recompute fails the
// feedback stays stored, a retry job is queued for the mentor and the error is
// returned; the periodic bulk recompute repairs any score the retry misses.
func (s *FeedbackService) Submit(ctx context.Context, req dto.SubmitFeedbackRequest) (*dto.FeedbackResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	question, err := s.questions.FindByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	if question.Status != models.QuestionStatusAnswered {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "question has not been answered yet")
	}

	response, err := s.responses.FindByQuestionID(ctx, question.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "question has no recorded response")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load response")
	}

	feedback := &models.Feedback{
		QuestionID: question.ID,
		ResponseID: response.ID,
		StudentID:  req.StudentID,
		MentorID:   response.MentorID,
		Outcome:    req.Outcome,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.feedback.Upsert(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store feedback")
	}
	s.metrics.IncFeedback(feedback.Outcome)
	s.cache.Invalidate(ctx, cacheKeyFeedbackStats)

	score, err := s.trust.Recompute(ctx, response.MentorID)
	if err != nil {
		s.logger.Error("trust recompute after feedback failed",
			zap.String("question_id", question.ID),
			zap.String("mentor_id", response.MentorID),
			zap.Error(err))
		s.scheduleRetry(response.MentorID)
		return nil, err
	}

	return &dto.FeedbackResult{Feedback: feedback, TrustScore: score, Badge: models.BadgeFor(score)}, nil
}

func (s *FeedbackService) scheduleRetry(mentorID string) {
	if s.retries == nil {
		return
	}
	jobID, err := s.trust.ScheduleRecompute(s.retries, mentorID)
	if err != nil {
		s.logger.Warn("scheduling trust retry failed", zap.String("mentor_id", mentorID), zap.Error(err))
		return
	}
	s.logger.Info("trust retry scheduled", zap.String("mentor_id", mentorID), zap.String("job_id", jobID))
}

// Stats aggregates feedback outcomes system-wide.
func (s *FeedbackService) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	var cached models.FeedbackStats
	if s.cache.Get(ctx, cacheKeyFeedbackStats, &cached) {
		return &cached, nil
	}

	rows, err := s.feedback.OutcomeCounts(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count feedback")
	}
	avg, err := s.feedback.AverageRating(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load average rating")
	}

	stats := &models.FeedbackStats{
		Counts:        make(map[models.FeedbackOutcome]int, len(models.FeedbackOutcomes)),
		AverageRating: math.Round(avg*100) / 100,
	}
	for _, outcome := range models.FeedbackOutcomes {
		stats.Counts[outcome] = 0
	}
	for _, row := range rows {
		stats.Counts[row.Outcome] += row.Count
		stats.TotalFeedback += row.Count
	}
	if stats.TotalFeedback > 0 {
		stats.Percentages = make(map[models.FeedbackOutcome]float64, len(stats.Counts))
		for outcome, n := range stats.Counts {
			stats.Percentages[outcome] = float64(n) / float64(stats.TotalFeedback) * 100
		}
	}

	s.cache.Set(ctx, cacheKeyFeedbackStats, stats, 0)
	return stats, nil
}
