package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	"github.com/noah-isme/ascend-api/internal/service"
	"github.com/noah-isme/ascend-api/pkg/jobs"
	"github.com/noah-isme/ascend-api/pkg/response"
)

type questionServiceMock struct {
	askReq    dto.AskQuestionRequest
	askResp   *dto.AskQuestionResult
	question  *models.Question
	filter    models.QuestionFilter
	answerID  string
	answerErr error
	err       error
}

func (m *questionServiceMock) Ask(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResult, error) {
	m.askReq = req
	return m.askResp, m.err
}

func (m *questionServiceMock) Get(ctx context.Context, id string) (*models.Question, error) {
	return m.question, m.err
}

func (m *questionServiceMock) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, *models.Pagination, error) {
	m.filter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Question{{ID: "q1", Status: models.QuestionStatusAnswered}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *questionServiceMock) Answer(ctx context.Context, questionID string, req dto.AnswerQuestionRequest) (*models.Response, error) {
	m.answerID = questionID
	if m.answerErr != nil {
		return nil, m.answerErr
	}
	return &models.Response{ID: "resp-1", QuestionID: questionID, MentorID: req.MentorID, Body: req.Body}, nil
}

type matcherMock struct {
	mentor      *models.Mentor
	err         error
	recommended []models.Mentor
	lastLimit   int
}

func (m *matcherMock) MatchQuestion(ctx context.Context, questionID string) (*models.Mentor, error) {
	return m.mentor, m.err
}

func (m *matcherMock) Recommendations(ctx context.Context, studentID string, limit int) ([]models.Mentor, error) {
	m.lastLimit = limit
	return m.recommended, m.err
}

func (m *matcherMock) Stats(ctx context.Context) (*models.MatchingStats, error) {
	return &models.MatchingStats{TotalMentors: 3}, m.err
}

func (m *matcherMock) CompanyMap(ctx context.Context) ([]models.CompanyMentorSummary, error) {
	return []models.CompanyMentorSummary{{CompanyID: "c1", VerifiedCount: 2}}, m.err
}

type feedbackMock struct {
	req dto.SubmitFeedbackRequest
	err error
}

func (m *feedbackMock) Submit(ctx context.Context, req dto.SubmitFeedbackRequest) (*dto.FeedbackResult, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.FeedbackResult{TrustScore: 55, Badge: models.BadgeSilver}, nil
}

func (m *feedbackMock) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	return &models.FeedbackStats{TotalFeedback: 4}, m.err
}

type queueMock struct {
	next       *models.Question
	sizes      map[string]int
	lastMentor string
	lastComp   string
	err        error
}

func (m *queueMock) SizeFor(companyID string) int { return m.sizes[companyID] }

func (m *queueMock) DequeueFor(ctx context.Context, mentorID, companyID string) (*models.Question, error) {
	m.lastMentor, m.lastComp = mentorID, companyID
	return m.next, m.err
}

func (m *queueMock) Requeue(ctx context.Context, questionID string) (bool, error) {
	return m.err == nil, m.err
}

func (m *queueMock) MentorQueue(ctx context.Context, mentorID string) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Question{}, nil
}

func (m *queueMock) Stats(ctx context.Context) (*models.QueueStats, error) {
	return &models.QueueStats{Queued: 2}, m.err
}

type allocatorMock struct {
	err error
}

func (m *allocatorMock) AssignQuestion(ctx context.Context, questionID string) (*models.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Assignment{QuestionID: questionID, MentorID: "m1"}, nil
}

func (m *allocatorMock) DistributeAll(ctx context.Context) ([]models.Assignment, error) {
	return []models.Assignment{{QuestionID: "q1", MentorID: "m1"}}, m.err
}

type mentorServiceMock struct {
	mentor *models.Mentor
	err    error
}

func (m *mentorServiceMock) Register(ctx context.Context, req dto.RegisterMentorRequest) (*models.Mentor, error) {
	return &models.Mentor{ID: "m-new", FullName: req.FullName, CompanyID: req.CompanyID, TrustScore: models.DefaultTrustScore}, m.err
}

func (m *mentorServiceMock) Get(ctx context.Context, id string) (*models.Mentor, error) {
	return m.mentor, m.err
}

func (m *mentorServiceMock) SetAvailability(ctx context.Context, id string, req dto.AvailabilityRequest) (*models.Mentor, error) {
	return m.mentor, m.err
}

func (m *mentorServiceMock) SetVerified(ctx context.Context, id string, req dto.VerificationRequest) (*models.Mentor, error) {
	return m.mentor, m.err
}

type activityMock struct {
	filter models.ResponseFilter
	err    error
}

func (m *activityMock) Responses(ctx context.Context, filter models.ResponseFilter) ([]models.Response, *models.Pagination, error) {
	m.filter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Response{{ID: "r1", MentorID: filter.MentorID}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *activityMock) Feedback(ctx context.Context, mentorID string) ([]models.Feedback, error) {
	return []models.Feedback{{ID: "f1", MentorID: mentorID, Outcome: models.OutcomeHelpful}}, m.err
}

func (m *activityMock) Dashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.MentorDashboard{MentorID: mentorID, TrustScore: 80, Badge: models.BadgeGold, PendingAtCompany: 2}, nil
}

type trustMock struct {
	score    int
	err      error
	enqueued service.JobEnqueuer
}

func (m *trustMock) Recompute(ctx context.Context, mentorID string) (int, error) {
	return m.score, m.err
}

func (m *trustMock) Metrics(ctx context.Context, mentorID string) (*models.TrustMetrics, error) {
	return &models.TrustMetrics{MentorID: mentorID, CurrentScore: m.score, Badge: models.BadgeFor(m.score)}, m.err
}

func (m *trustMock) ScheduleBulkRecompute(enqueuer service.JobEnqueuer, reason string) (string, error) {
	m.enqueued = enqueuer
	if m.err != nil {
		return "", m.err
	}
	return "job-1", enqueuer.Enqueue(jobs.Job{ID: "job-1", Type: service.JobTypeTrustBulkRecompute})
}

type enqueuerMock struct{ jobs []jobs.Job }

func (e *enqueuerMock) Enqueue(job jobs.Job) error {
	e.jobs = append(e.jobs, job)
	return nil
}

type referralMock struct {
	filter models.ReferralFilter
	err    error
}

func (m *referralMock) Request(ctx context.Context, req dto.CreateReferralRequest) (*models.Referral, error) {
	return &models.Referral{ID: "ref-1", StudentID: req.StudentID, MentorID: req.MentorID, Status: models.ReferralStatusPending}, m.err
}

func (m *referralMock) Respond(ctx context.Context, id string, req dto.RespondReferralRequest) (*models.Referral, error) {
	return &models.Referral{ID: id, MentorID: req.MentorID, Status: req.Status}, m.err
}

func (m *referralMock) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error) {
	m.filter = filter
	return []models.Referral{}, m.err
}

// serveJSON runs one request through a handler mounted at route.
func serveJSON(t *testing.T, method, route, target, body string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, route, h)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
