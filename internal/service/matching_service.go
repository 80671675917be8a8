package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

// Scoring weights used by the matcher.
const (
	matchBaseScore          = 100
	matchPendingPenalty     = 5
	matchResponsiveBonus    = 10
	matchResponsiveCutoff   = 0.8
	coldStartResponseRate   = 0.5
	defaultRecommendLimit   = 5
	maxRecommendLimit       = 50
	defaultStatsCacheWindow = time.Minute
)

type matchingMentorRepository interface {
	ListEligibleByCompany(ctx context.Context, companyID string) ([]models.Mentor, error)
	FindTopEligible(ctx context.Context) (*models.Mentor, error)
	ListTopEligible(ctx context.Context, companyIDs []string, limit int) ([]models.Mentor, error)
	MatchingStats(ctx context.Context) (*models.MatchingStats, error)
	CompanySummaries(ctx context.Context) ([]models.CompanyMentorSummary, error)
}

type matchingCompanyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
	ListIndustryPeers(ctx context.Context, companyID string) ([]models.Company, error)
}

type matchingQuestionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	CountPendingByCompany(ctx context.Context, companyID string) (int, error)
	ListCompanyIDsByStudent(ctx context.Context, studentID string) ([]string, error)
}

type matchingResponseRepository interface {
	CountByMentor(ctx context.Context, mentorID string) (int, error)
}

// MatchingService picks the best mentor for a question.
type MatchingService struct {
	mentors   matchingMentorRepository
	companies matchingCompanyRepository
	questions matchingQuestionRepository
	responses matchingResponseRepository
	cache     *CacheService
	metrics   *MetricsService
	statsTTL  time.Duration
	logger    *zap.Logger
}

// NewMatchingService constructs the matcher. cache and metrics are optional.
func NewMatchingService(
	mentors matchingMentorRepository,
	companies matchingCompanyRepository,
	questions matchingQuestionRepository,
	responses matchingResponseRepository,
	cache *CacheService,
	metrics *MetricsService,
	statsTTL time.Duration,
	logger *zap.Logger,
) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if statsTTL <= 0 {
		statsTTL = defaultStatsCacheWindow
	}
	return &MatchingService{
		mentors:   mentors,
		companies: companies,
		questions: questions,
		responses: responses,
		cache:     cache,
		metrics:   metrics,
		statsTTL:  statsTTL,
		logger:    logger,
	}
}

// Score ranks a candidate. pendingCount is the company's pending question count.
func Score(mentor models.Mentor, pendingCount int, responseRate float64) int {
	score := matchBaseScore - matchPendingPenalty*pendingCount + mentor.TrustScore
	if responseRate > matchResponsiveCutoff {
		score += matchResponsiveBonus
	}
	return score
}

// ResponseRate returns the neutral prior for mentors without responses.
// With at least one response the rate is responses over responses, so it saturates at 1.
func (s *MatchingService) ResponseRate(ctx context.Context, mentorID string) (float64, error) {
	count, err := s.responses.CountByMentor(ctx, mentorID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return coldStartResponseRate, nil
	}
	rate := float64(count) / float64(count)
	if rate > 1 {
		rate = 1
	}
	return rate, nil
}

// FindBestMentor returns the highest scoring eligible mentor for the question.
// A nil mentor with a nil error means nobody is eligible anywhere.
func (s *MatchingService) FindBestMentor(ctx context.Context, question *models.Question) (*models.Mentor, error) {
	pool, err := s.mentors.ListEligibleByCompany(ctx, question.CompanyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentors")
	}
	if len(pool) == 0 {
		return s.fallback(ctx, question)
	}

	pending, err := s.questions.CountPendingByCompany(ctx, question.CompanyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending questions")
	}

	var (
		best      *models.Mentor
		bestScore int
	)
	for i := range pool {
		candidate := pool[i]
		if !candidate.Eligible() {
			continue
		}
		rate, err := s.ResponseRate(ctx, candidate.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load response rate")
		}
		score := Score(candidate, pending, rate)
		// strict comparison keeps the earliest candidate on ties
		if best == nil || score > bestScore {
			best = &pool[i]
			bestScore = score
		}
	}

	if best == nil {
		return s.fallback(ctx, question)
	}
	s.logger.Debug("matched mentor",
		zap.String("question_id", question.ID),
		zap.String("mentor_id", best.ID),
		zap.Int("score", bestScore))
	s.metrics.ObserveMatch(MatchResultExact)
	return best, nil
}

// fallback walks same-industry peers in store order and takes the best mentor of
// the first peer that has anyone eligible, then falls back to the global top.
func (s *MatchingService) fallback(ctx context.Context, question *models.Question) (*models.Mentor, error) {
	company, err := s.companies.FindByID(ctx, question.CompanyID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	if company != nil && company.Industry != nil {
		peers, err := s.companies.ListIndustryPeers(ctx, company.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load industry peers")
		}
		for _, peer := range peers {
			top, err := s.mentors.ListTopEligible(ctx, []string{peer.ID}, 1)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load peer mentors")
			}
			if len(top) > 0 && top[0].Eligible() {
				s.metrics.ObserveMatch(MatchResultIndustry)
				return &top[0], nil
			}
		}
	}

	mentor, err := s.mentors.FindTopEligible(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveMatch(MatchResultNone)
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load top mentor")
	}
	if !mentor.Eligible() {
		s.metrics.ObserveMatch(MatchResultNone)
		return nil, nil
	}
	s.metrics.ObserveMatch(MatchResultGlobal)
	return mentor, nil
}

// MatchQuestion resolves a question and runs FindBestMentor on it.
func (s *MatchingService) MatchQuestion(ctx context.Context, questionID string) (*models.Mentor, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	return s.FindBestMentor(ctx, question)
}

// Recommendations lists top mentors at the companies a student has asked about,
// or the top mentors overall when the student has no history.
func (s *MatchingService) Recommendations(ctx context.Context, studentID string, limit int) ([]models.Mentor, error) {
	if limit <= 0 || limit > maxRecommendLimit {
		limit = defaultRecommendLimit
	}
	companyIDs, err := s.questions.ListCompanyIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student history")
	}
	mentors, err := s.mentors.ListTopEligible(ctx, companyIDs, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recommendations")
	}
	if mentors == nil {
		mentors = []models.Mentor{}
	}
	return mentors, nil
}

// Stats aggregates the verified mentor pool. Results are cached when the stats cache is on.
func (s *MatchingService) Stats(ctx context.Context) (*models.MatchingStats, error) {
	var cached models.MatchingStats
	if s.cache.Get(ctx, cacheKeyMatchingStats, &cached) {
		return &cached, nil
	}
	stats, err := s.mentors.MatchingStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load matching stats")
	}
	s.cache.Set(ctx, cacheKeyMatchingStats, stats, s.statsTTL)
	return stats, nil
}

// CompanyMap returns verified and available mentor counts per company.
func (s *MatchingService) CompanyMap(ctx context.Context) ([]models.CompanyMentorSummary, error) {
	var cached []models.CompanyMentorSummary
	if s.cache.Get(ctx, cacheKeyCompanyMap, &cached) {
		return cached, nil
	}
	rows, err := s.mentors.CompanySummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company mentor map")
	}
	if rows == nil {
		rows = []models.CompanyMentorSummary{}
	}
	s.cache.Set(ctx, cacheKeyCompanyMap, rows, s.statsTTL)
	return rows, nil
}

// InvalidateMentorCaches drops cached views that depend on mentor state.
func (s *MatchingService) InvalidateMentorCaches(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyMatchingStats, cacheKeyCompanyMap)
}
