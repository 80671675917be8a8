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

type questionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error)
	Answer(ctx context.Context, resp *models.Response) (bool, error)
}

type questionCompanyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

type questionMentorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

type mentorMatcher interface {
	FindBestMentor(ctx context.Context, question *models.Question) (*models.Mentor, error)
}

type questionQueue interface {
	Enqueue(ctx context.Context, questionID string) (bool, error)
	Release(questionID string)
	SizeFor(companyID string) int
}

// QuestionService drives a question from submission to its answer.
type QuestionService struct {
	questions questionRepository
	companies questionCompanyRepository
	mentors   questionMentorRepository
	matcher   mentorMatcher
	queue     questionQueue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuestionService constructs the question workflow.
func NewQuestionService(
	questions questionRepository,
	companies questionCompanyRepository,
	mentors questionMentorRepository,
	matcher mentorMatcher,
	queue questionQueue,
	validate *validator.Validate,
	logger *zap.Logger,
) *QuestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		questions: questions,
		companies: companies,
		mentors:   mentors,
		matcher:   matcher,
		queue:     queue,
		validator: validate,
		logger:    logger,
	}
}

// Ask stores a new pending question, suggests a mentor for it and queues it for pickup.
// Finding no mentor is not an error; the question simply waits in the queue.
func (s *QuestionService) Ask(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}
	if _, err := s.companies.FindByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	question := &models.Question{
		StudentID: req.StudentID,
		CompanyID: req.CompanyID,
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Urgency:   urgency,
		Status:    models.QuestionStatusPending,
	}

	mentor, err := s.matcher.FindBestMentor(ctx, question)
	if err != nil {
		// matching is advisory; the queue still gets the question
		s.logger.Warn("mentor matching failed", zap.String("company_id", req.CompanyID), zap.Error(err))
		mentor = nil
	}
	if mentor != nil {
		id := mentor.ID
		question.TargetMentorID = &id
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create question")
	}

	queued, err := s.queue.Enqueue(ctx, question.ID)
	if err != nil {
		// still pending in the store, so Initialize loads it on the next start
		s.logger.Warn("queueing question failed", zap.String("question_id", question.ID), zap.Error(err))
	}
	s.logger.Info("question submitted",
		zap.String("question_id", question.ID),
		zap.String("company_id", question.CompanyID),
		zap.String("urgency", string(question.Urgency)),
		zap.Bool("matched", mentor != nil))

	return &dto.AskQuestionResult{
		Question:      question,
		MatchedMentor: mentor,
		Queued:        queued,
		QueueSize:     s.queue.SizeFor(question.CompanyID),
	}, nil
}

// Get returns a question by ID.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	return question, nil
}

// List pages through questions. Filtering on answered questions with a search term
// gives students a searchable knowledge base of earlier answers.
func (s *QuestionService) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, *models.Pagination, error) {
	questions, total, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list questions")
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, newPagination(filter.Page, filter.PageSize, total), nil
}

// Answer records a mentor's response and closes the question. Answering twice is rejected.
func (s *QuestionService) Answer(ctx context.Context, questionID string, req dto.AnswerQuestionRequest) (*models.Response, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answer payload")
	}
	question, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !question.IsPending() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "question already answered")
	}
	if _, err := s.mentors.FindByID(ctx, req.MentorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}

	resp := &models.Response{QuestionID: question.ID, MentorID: req.MentorID, Body: req.Body}
	ok, err := s.questions.Answer(ctx, resp)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record answer")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "question already answered")
	}

	s.queue.Release(question.ID)
	s.logger.Info("question answered", zap.String("question_id", question.ID), zap.String("mentor_id", req.MentorID))
	return resp, nil
}
