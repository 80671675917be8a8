package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
	"github.com/noah-isme/ascend-api/pkg/jobs"
)

// Trust score weights per feedback outcome and per stale company question.
const (
	trustHelpfulWeight    = 5
	trustInterviewWeight  = 10
	trustReferralWeight   = 15
	trustNotHelpfulWeight = 3
	trustUnansweredWeight = 2
	defaultStaleAfter     = 7 * 24 * time.Hour
)

// Job types handled by TrustService.HandleJob.
const (
	JobTypeTrustRecompute     = "trust.recompute"
	JobTypeTrustBulkRecompute = "trust.bulk_recompute"
)

type trustMentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	ListVerified(ctx context.Context) ([]models.Mentor, error)
	UpdateTrustScore(ctx context.Context, id string, score int) error
}

type trustFeedbackRepository interface {
	OutcomeCounts(ctx context.Context, mentorID string) ([]models.FeedbackOutcomeCount, error)
	AverageRating(ctx context.Context, mentorID string) (float64, error)
}

type trustQuestionRepository interface {
	CountStaleByCompany(ctx context.Context, companyID string, before time.Time) (int, error)
}

// JobEnqueuer accepts background jobs.
type JobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// TrustServiceConfig tunes staleness and the periodic refresh.
type TrustServiceConfig struct {
	StaleAfter        time.Duration
	RecomputeInterval time.Duration
}

// TrustService computes and persists mentor trust scores.
type TrustService struct {
	mentors   trustMentorRepository
	feedback  trustFeedbackRepository
	questions trustQuestionRepository
	cache     *CacheService
	metrics   *MetricsService
	cfg       TrustServiceConfig
	logger    *zap.Logger
	now       func() time.Time
	locks     *keyedMutex
}

// NewTrustService constructs the trust engine.
func NewTrustService(mentors trustMentorRepository, feedback trustFeedbackRepository, questions trustQuestionRepository, cache *CacheService, metrics *MetricsService, cfg TrustServiceConfig, logger *zap.Logger) *TrustService {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrustService{
		mentors:   mentors,
		feedback:  feedback,
		questions: questions,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
}

// Badge maps a score to its display tier.
func (s *TrustService) Badge(score int) models.TrustBadge {
	return models.BadgeFor(score)
}

type trustInputs struct {
	counts     map[models.FeedbackOutcome]int
	unanswered int
}

func (in trustInputs) score() int {
	raw := models.DefaultTrustScore +
		trustHelpfulWeight*in.counts[models.OutcomeHelpful] +
		trustInterviewWeight*in.counts[models.OutcomeGotInterview] +
		trustReferralWeight*in.counts[models.OutcomeGotReferral] -
		trustNotHelpfulWeight*in.counts[models.OutcomeNotHelpful] -
		trustUnansweredWeight*in.unanswered
	return models.ClampTrustScore(raw)
}

func (s *TrustService) loadInputs(ctx context.Context, mentor *models.Mentor) (trustInputs, error) {
	rows, err := s.feedback.OutcomeCounts(ctx, mentor.ID)
	if err != nil {
		return trustInputs{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count feedback")
	}
	counts := make(map[models.FeedbackOutcome]int, len(rows))
	for _, row := range rows {
		counts[row.Outcome] += row.Count
	}
	unanswered, err := s.questions.CountStaleByCompany(ctx, mentor.CompanyID, s.now().Add(-s.cfg.StaleAfter))
	if err != nil {
		return trustInputs{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unanswered questions")
	}
	return trustInputs{counts: counts, unanswered: unanswered}, nil
}

func (s *TrustService) loadMentor(ctx context.Context, mentorID string) (*models.Mentor, error) {
	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor, nil
}

// Calculate computes a mentor's score from the current store state without persisting it.
func (s *TrustService) Calculate(ctx context.Context, mentorID string) (int, error) {
	mentor, err := s.loadMentor(ctx, mentorID)
	if err != nil {
		return 0, err
	}
	in, err := s.loadInputs(ctx, mentor)
	if err != nil {
		return 0, err
	}
	return in.score(), nil
}

// Recompute recalculates and stores a mentor's score. Calls for the same mentor are serialised.
func (s *TrustService) Recompute(ctx context.Context, mentorID string) (int, error) {
	unlock := s.locks.Lock(mentorID)
	defer unlock()

	mentor, err := s.loadMentor(ctx, mentorID)
	if err != nil {
		return 0, err
	}
	score, _, err := s.recomputeLocked(ctx, mentor)
	return score, err
}

func (s *TrustService) recomputeLocked(ctx context.Context, mentor *models.Mentor) (int, bool, error) {
	start := time.Now()
	in, err := s.loadInputs(ctx, mentor)
	if err != nil {
		return 0, false, err
	}
	score := in.score()
	changed := score != mentor.TrustScore
	if changed {
		if err := s.mentors.UpdateTrustScore(ctx, mentor.ID, score); err != nil {
			return 0, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist trust score")
		}
		s.logger.Debug("trust score updated",
			zap.String("mentor_id", mentor.ID),
			zap.Int("previous", mentor.TrustScore),
			zap.Int("score", score))
		s.cache.Invalidate(ctx, cacheKeyMatchingStats)
	}
	s.cache.Invalidate(ctx, trustMetricsCacheKey(mentor.ID))
	s.metrics.ObserveTrustRecompute(time.Since(start))
	return score, changed, nil
}

// BulkRecompute refreshes every verified mentor and returns how many scores changed.
// Each mentor is independent, so a failed run can simply be repeated.
func (s *TrustService) BulkRecompute(ctx context.Context) (int, error) {
	mentors, err := s.mentors.ListVerified(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}

	changed := 0
	for i := range mentors {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		updated, err := s.bulkRecomputeOne(ctx, mentors[i].ID)
		if err != nil {
			return changed, err
		}
		if updated {
			changed++
		}
	}
	// mentors that lost verification keep a stale breakdown otherwise
	s.cache.InvalidatePattern(ctx, cacheKeyTrustPattern)
	s.logger.Info("bulk trust recompute finished", zap.Int("mentors", len(mentors)), zap.Int("changed", changed))
	return changed, nil
}

// bulkRecomputeOne reloads the mentor under its lock so the change check sees
// writes made by a concurrent Recompute after the listing was taken.
func (s *TrustService) bulkRecomputeOne(ctx context.Context, mentorID string) (bool, error) {
	unlock := s.locks.Lock(mentorID)
	defer unlock()

	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	_, updated, err := s.recomputeLocked(ctx, mentor)
	return updated, err
}

// Metrics returns the breakdown behind a mentor's score.
func (s *TrustService) Metrics(ctx context.Context, mentorID string) (*models.TrustMetrics, error) {
	var cached models.TrustMetrics
	if s.cache.Get(ctx, trustMetricsCacheKey(mentorID), &cached) {
		return &cached, nil
	}

	mentor, err := s.loadMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	in, err := s.loadInputs(ctx, mentor)
	if err != nil {
		return nil, err
	}
	avg, err := s.feedback.AverageRating(ctx, mentor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load average rating")
	}

	total := 0
	for _, n := range in.counts {
		total += n
	}
	score := in.score()
	metrics := &models.TrustMetrics{
		MentorID:        mentor.ID,
		TotalFeedback:   total,
		HelpfulCount:    in.counts[models.OutcomeHelpful],
		InterviewCount:  in.counts[models.OutcomeGotInterview],
		ReferralCount:   in.counts[models.OutcomeGotReferral],
		NotHelpfulCount: in.counts[models.OutcomeNotHelpful],
		UnansweredCount: in.unanswered,
		AverageRating:   avg,
		CurrentScore:    score,
		Badge:           models.BadgeFor(score),
	}
	s.cache.Set(ctx, trustMetricsCacheKey(mentor.ID), metrics, 0)
	return metrics, nil
}

// HandleJob runs trust jobs routed from the background queue.
func (s *TrustService) HandleJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobTypeTrustRecompute:
		mentorID := job.Payload["mentor_id"]
		if mentorID == "" {
			return fmt.Errorf("job %s: missing mentor_id", job.ID)
		}
		_, err := s.Recompute(ctx, mentorID)
		return err
	case JobTypeTrustBulkRecompute:
		_, err := s.BulkRecompute(ctx)
		return err
	default:
		return fmt.Errorf("job %s: unsupported type %q", job.ID, job.Type)
	}
}

// ScheduleRecompute enqueues a recompute of one mentor and returns the job id.
func (s *TrustService) ScheduleRecompute(enqueuer JobEnqueuer, mentorID string) (string, error) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeTrustRecompute,
		Payload: map[string]string{"mentor_id": mentorID},
	}
	if err := enqueuer.Enqueue(job); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to schedule trust recompute")
	}
	return job.ID, nil
}

// ScheduleBulkRecompute enqueues a bulk recompute job and returns its id.
func (s *TrustService) ScheduleBulkRecompute(enqueuer JobEnqueuer, reason string) (string, error) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeTrustBulkRecompute,
		Payload: map[string]string{"reason": reason},
	}
	if err := enqueuer.Enqueue(job); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to schedule trust recompute")
	}
	return job.ID, nil
}

// RunPeriodicRecompute schedules a bulk recompute every interval until ctx is cancelled,
// so stale question penalties land without waiting for new feedback.
func (s *TrustService) RunPeriodicRecompute(ctx context.Context, enqueuer JobEnqueuer) error {
	if s.cfg.RecomputeInterval <= 0 {
		return nil
	}
	ticker := time.NewTicker(s.cfg.RecomputeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.ScheduleBulkRecompute(enqueuer, "scheduled"); err != nil {
				s.logger.Warn("scheduling trust recompute failed", zap.Error(err))
			}
		}
	}
}
