package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ascend-api/internal/models"
	"github.com/noah-isme/ascend-api/internal/queue"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

const defaultLeaseTTL = 48 * time.Hour

type queueQuestionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	ListPending(ctx context.Context) ([]models.Question, error)
	CountPending(ctx context.Context, urgency *models.QuestionUrgency) (int, error)
}

type queueMentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	CountAvailable(ctx context.Context) (int, error)
}

// QueueServiceConfig tunes leases on dequeued questions.
type QueueServiceConfig struct {
	LeaseTTL        time.Duration
	ReclaimInterval time.Duration
}

// lease tracks a question handed to a mentor that has not been answered yet.
type lease struct {
	MentorID  string
	CompanyID string
	ExpiresAt time.Time
}

// QueueService keeps the in-memory queue consistent with the question store.
// Enqueue, Requeue, Release and dequeue claims are serialised per question id.
type QueueService struct {
	queue     *queue.Queue
	questions queueQuestionRepository
	mentors   queueMentorRepository
	metrics   *MetricsService
	cfg       QueueServiceConfig
	logger    *zap.Logger
	now       func() time.Time

	locks  *keyedMutex
	mu     sync.Mutex
	leases map[string]lease
}

// NewQueueService wires a queue to the store. A nil queue gets a fresh one.
func NewQueueService(q *queue.Queue, questions queueQuestionRepository, mentors queueMentorRepository, metrics *MetricsService, cfg QueueServiceConfig, logger *zap.Logger) *QueueService {
	if q == nil {
		q = queue.New()
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = defaultLeaseTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueService{
		queue:     q,
		questions: questions,
		mentors:   mentors,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		locks:     newKeyedMutex(),
		leases:    make(map[string]lease),
	}
}

// Initialize rebuilds the queue from every pending question in the store.
func (s *QueueService) Initialize(ctx context.Context) (int, error) {
	pending, err := s.questions.ListPending(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending questions")
	}

	s.mu.Lock()
	s.leases = make(map[string]lease)
	s.mu.Unlock()

	s.queue.Reset()
	loaded := 0
	for _, question := range pending {
		if s.queue.Enqueue(question) {
			loaded++
		}
	}
	s.publishDepth()
	s.logger.Info("question queue initialised", zap.Int("questions", loaded))
	return loaded, nil
}

// Enqueue adds a question to its company's queue once the store confirms it is
// still pending. It reports whether the question is queued afterwards.
func (s *QueueService) Enqueue(ctx context.Context, questionID string) (bool, error) {
	unlock := s.locks.Lock(questionID)
	defer unlock()

	queued, err := s.admitLocked(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	return queued, nil
}

// DequeueFor hands the next question of a company to a mentor and records a lease on it.
// An empty companyID resolves to the mentor's own company. Questions answered behind
// the queue's back are dropped on the way.
func (s *QueueService) DequeueFor(ctx context.Context, mentorID, companyID string) (*models.Question, error) {
	if companyID == "" {
		mentor, err := s.mentors.FindByID(ctx, mentorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
		}
		companyID = mentor.CompanyID
	}

	for {
		head, ok := s.queue.Front(companyID)
		if !ok {
			s.publishDepth()
			return nil, nil
		}
		claimed, err := s.claim(ctx, mentorID, companyID, head.ID)
		if err != nil {
			return nil, err
		}
		if claimed != nil {
			s.publishDepth()
			return claimed, nil
		}
	}
}

// claim takes a queued question off the queue if the store still has it pending.
// A store failure leaves the question where it was.
func (s *QueueService) claim(ctx context.Context, mentorID, companyID, questionID string) (*models.Question, error) {
	unlock := s.locks.Lock(questionID)
	defer unlock()

	current, err := s.questions.FindByID(ctx, questionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	if !s.queue.Remove(questionID) {
		// another mentor claimed it first
		return nil, nil
	}
	if !current.IsPending() {
		s.logger.Debug("dropping stale queue entry", zap.String("question_id", questionID))
		return nil, nil
	}

	s.mu.Lock()
	s.leases[current.ID] = lease{MentorID: mentorID, CompanyID: companyID, ExpiresAt: s.now().Add(s.cfg.LeaseTTL)}
	s.mu.Unlock()
	return current, nil
}

// Requeue puts a dequeued question back if it is still pending.
// It reports whether the question is queued afterwards.
func (s *QueueService) Requeue(ctx context.Context, questionID string) (bool, error) {
	unlock := s.locks.Lock(questionID)
	defer unlock()

	queued, err := s.admitLocked(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.dropLease(questionID)
			return false, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	s.dropLease(questionID)
	return queued, nil
}

// admitLocked queues the question only while the store reports it pending. The caller
// holds the question's lock, so an answer committed after the read is followed by a
// Release that waits for us and then removes the entry.
func (s *QueueService) admitLocked(ctx context.Context, questionID string) (bool, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return false, err
	}
	if !question.IsPending() {
		s.queue.Remove(questionID)
		s.publishDepth()
		return false, nil
	}
	s.queue.Enqueue(*question)
	s.publishDepth()
	return s.queue.Contains(questionID), nil
}

// Release forgets a question after it was answered.
func (s *QueueService) Release(questionID string) {
	unlock := s.locks.Lock(questionID)
	defer unlock()

	s.dropLease(questionID)
	s.queue.Remove(questionID)
	s.publishDepth()
}

// ReclaimExpired requeues questions whose lease ran out without an answer.
func (s *QueueService) ReclaimExpired(ctx context.Context) (int, error) {
	now := s.now()
	var expired []string
	s.mu.Lock()
	for id, l := range s.leases {
		if now.After(l.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	reclaimed := 0
	for _, id := range expired {
		queued, err := s.Requeue(ctx, id)
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code {
				continue
			}
			return reclaimed, err
		}
		if queued {
			reclaimed++
		}
	}
	if reclaimed > 0 {
		s.metrics.AddReclaimed(reclaimed)
		s.logger.Info("reclaimed expired queue leases", zap.Int("questions", reclaimed))
	}
	return reclaimed, nil
}

// RunReclaimer periodically reclaims expired leases until ctx is cancelled.
func (s *QueueService) RunReclaimer(ctx context.Context) error {
	if s.cfg.ReclaimInterval <= 0 {
		return nil
	}
	ticker := time.NewTicker(s.cfg.ReclaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.ReclaimExpired(ctx); err != nil {
				s.logger.Warn("lease reclaim failed", zap.Error(err))
			}
		}
	}
}

// SizeFor returns how many questions wait for a company.
func (s *QueueService) SizeFor(companyID string) int {
	return s.queue.SizeFor(companyID)
}

// MentorQueue lists the questions waiting at the mentor's company in dequeue order.
func (s *QueueService) MentorQueue(ctx context.Context, mentorID string) ([]models.Question, error) {
	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	items := s.queue.Peek(mentor.CompanyID)
	if items == nil {
		items = []models.Question{}
	}
	return items, nil
}

// InFlight returns the number of dequeued questions still awaiting an answer.
func (s *QueueService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leases)
}

// Stats combines store counts with queue occupancy.
func (s *QueueService) Stats(ctx context.Context) (*models.QueueStats, error) {
	total, err := s.questions.CountPending(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending questions")
	}
	high := models.UrgencyHigh
	urgent, err := s.questions.CountPending(ctx, &high)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count urgent questions")
	}
	available, err := s.mentors.CountAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count available mentors")
	}
	return &models.QueueStats{
		TotalPending:           total,
		HighPriority:           urgent,
		CompaniesWithQuestions: s.queue.Companies(),
		AvailableMentors:       available,
		Queued:                 s.queue.Len(),
		InFlight:               s.InFlight(),
	}, nil
}

func (s *QueueService) dropLease(questionID string) {
	s.mu.Lock()
	delete(s.leases, questionID)
	s.mu.Unlock()
}

func (s *QueueService) publishDepth() {
	s.metrics.SetQueueDepth(s.queue.Len(), s.InFlight())
}
