package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

const (
	defaultListPageSize    = 10
	dashboardRecentAnswers = 5
)

type activityMentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

type activityResponseRepository interface {
	ListByMentor(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error)
}

type activityQuestionRepository interface {
	CountPendingByCompany(ctx context.Context, companyID string) (int, error)
}

type activityFeedbackRepository interface {
	ListByMentor(ctx context.Context, mentorID string) ([]models.Feedback, error)
}

// MentorActivityService serves a mentor's read-only view of their own work.
type MentorActivityService struct {
	mentors   activityMentorRepository
	responses activityResponseRepository
	questions activityQuestionRepository
	feedback  activityFeedbackRepository
}

// NewMentorActivityService constructs the mentor activity reader.
func NewMentorActivityService(mentors activityMentorRepository, responses activityResponseRepository, questions activityQuestionRepository, feedback activityFeedbackRepository) *MentorActivityService {
	return &MentorActivityService{mentors: mentors, responses: responses, questions: questions, feedback: feedback}
}

func (s *MentorActivityService) loadMentor(ctx context.Context, mentorID string) (*models.Mentor, error) {
	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor, nil
}

// Responses pages through the answers a mentor has given, newest first.
func (s *MentorActivityService) Responses(ctx context.Context, filter models.ResponseFilter) ([]models.Response, *models.Pagination, error) {
	if _, err := s.loadMentor(ctx, filter.MentorID); err != nil {
		return nil, nil, err
	}
	items, total, err := s.responses.ListByMentor(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list responses")
	}
	if items == nil {
		items = []models.Response{}
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Feedback lists every feedback record left on a mentor's answers, newest first.
func (s *MentorActivityService) Feedback(ctx context.Context, mentorID string) ([]models.Feedback, error) {
	if _, err := s.loadMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	items, err := s.feedback.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// Dashboard summarises pending work at the mentor's company and their recent answers.
func (s *MentorActivityService) Dashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error) {
	mentor, err := s.loadMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	pending, err := s.questions.CountPendingByCompany(ctx, mentor.CompanyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending questions")
	}
	recent, answered, err := s.responses.ListByMentor(ctx, models.ResponseFilter{MentorID: mentor.ID, Page: 1, PageSize: dashboardRecentAnswers})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list responses")
	}
	if recent == nil {
		recent = []models.Response{}
	}
	return &models.MentorDashboard{
		MentorID:             mentor.ID,
		TrustScore:           mentor.TrustScore,
		Badge:                models.BadgeFor(mentor.TrustScore),
		IsAcceptingQuestions: mentor.IsAcceptingQuestions,
		PendingAtCompany:     pending,
		AnsweredCount:        answered,
		RecentResponses:      recent,
	}, nil
}

func newPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = defaultListPageSize
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
