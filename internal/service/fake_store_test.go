package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

var testEpoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// fakeStore is an in-memory entity store shared by the per-entity fakes below.
// Slices keep insertion order, which stands in for created_at, id ordering.
type fakeStore struct {
	mu        sync.Mutex
	companies []models.Company
	mentors   []models.Mentor
	questions []models.Question
	responses []models.Response
	feedback  []models.Feedback
	referrals []models.Referral
	seq       int

	trustWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) addCompany(id, industry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Company{ID: id, Name: "Company " + id, CreatedAt: testEpoch.Add(time.Duration(len(s.companies)) * time.Minute)}
	if industry != "" {
		ind := industry
		c.Industry = &ind
	}
	s.companies = append(s.companies, c)
}

func (s *fakeStore) addMentor(id, companyID string, trust int, verified, accepting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentors = append(s.mentors, models.Mentor{
		ID:                   id,
		FullName:             "Mentor " + id,
		CompanyID:            companyID,
		TrustScore:           trust,
		IsVerified:           verified,
		IsAcceptingQuestions: accepting,
		CreatedAt:            testEpoch.Add(time.Duration(len(s.mentors)) * time.Minute),
	})
}

func (s *fakeStore) addQuestion(id, companyID string, urgency models.QuestionUrgency, status models.QuestionStatus, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, models.Question{
		ID:        id,
		StudentID: "student-1",
		CompanyID: companyID,
		Title:     "Question " + id,
		Body:      "Body",
		Urgency:   urgency,
		Status:    status,
		CreatedAt: createdAt,
	})
}

// addResponse records a response without touching the question status.
func (s *fakeStore) addResponse(questionID, mentorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, models.Response{
		ID:         s.nextID("resp"),
		QuestionID: questionID,
		MentorID:   mentorID,
		Body:       "answer",
		CreatedAt:  testEpoch,
	})
}

// answer marks the question answered and records the response, like the real transaction.
func (s *fakeStore) answer(questionID, mentorID string) {
	s.mu.Lock()
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			s.questions[i].Status = models.QuestionStatusAnswered
		}
	}
	s.mu.Unlock()
	s.addResponse(questionID, mentorID)
}

func (s *fakeStore) mentor(id string) models.Mentor {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mentors {
		if m.ID == id {
			return m
		}
	}
	return models.Mentor{}
}

func (s *fakeStore) question(id string) models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.questions {
		if q.ID == id {
			return q
		}
	}
	return models.Question{}
}

func (s *fakeStore) feedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback)
}

func (s *fakeStore) mentorRepo() *fakeMentorRepo { return &fakeMentorRepo{s} }
func (s *fakeStore) companyRepo() *fakeCompanyRepo { return &fakeCompanyRepo{s} }
func (s *fakeStore) questionRepo() *fakeQuestionRepo { return &fakeQuestionRepo{s} }
func (s *fakeStore) responseRepo() *fakeResponseRepo { return &fakeResponseRepo{s} }
func (s *fakeStore) feedbackRepo() *fakeFeedbackRepo { return &fakeFeedbackRepo{s} }
func (s *fakeStore) referralRepo() *fakeReferralRepo { return &fakeReferralRepo{s} }

type fakeMentorRepo struct{ s *fakeStore }

func (r *fakeMentorRepo) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.mentors {
		if m.ID == id {
			copied := m
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeMentorRepo) Create(ctx context.Context, mentor *models.Mentor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if mentor.ID == "" {
		mentor.ID = r.s.nextID("mentor")
	}
	mentor.CreatedAt = testEpoch.Add(time.Duration(len(r.s.mentors)) * time.Minute)
	r.s.mentors = append(r.s.mentors, *mentor)
	return nil
}

func (r *fakeMentorRepo) ListEligibleByCompany(ctx context.Context, companyID string) ([]models.Mentor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Mentor
	for _, m := range r.s.mentors {
		if m.CompanyID == companyID && m.Eligible() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMentorRepo) eligibleByTrust(companyIDs []string) []models.Mentor {
	allowed := make(map[string]bool, len(companyIDs))
	for _, id := range companyIDs {
		allowed[id] = true
	}
	var out []models.Mentor
	for _, m := range r.s.mentors {
		if !m.Eligible() {
			continue
		}
		if len(allowed) > 0 && !allowed[m.CompanyID] {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TrustScore > out[j].TrustScore })
	return out
}

func (r *fakeMentorRepo) FindTopEligible(ctx context.Context) (*models.Mentor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ranked := r.eligibleByTrust(nil)
	if len(ranked) == 0 {
		return nil, sql.ErrNoRows
	}
	return &ranked[0], nil
}

func (r *fakeMentorRepo) ListTopEligible(ctx context.Context, companyIDs []string, limit int) ([]models.Mentor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 {
		limit = 5
	}
	ranked := r.eligibleByTrust(companyIDs)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *fakeMentorRepo) ListVerified(ctx context.Context) ([]models.Mentor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Mentor
	for _, m := range r.s.mentors {
		if m.IsVerified {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMentorRepo) UpdateTrustScore(ctx context.Context, id string, score int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.mentors {
		if r.s.mentors[i].ID == id {
			r.s.mentors[i].TrustScore = score
			r.s.trustWrites++
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeMentorRepo) SetAccepting(ctx context.Context, id string, accepting bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.mentors {
		if r.s.mentors[i].ID == id {
			r.s.mentors[i].IsAcceptingQuestions = accepting
		}
	}
	return nil
}

func (r *fakeMentorRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.mentors {
		if r.s.mentors[i].ID == id {
			r.s.mentors[i].IsVerified = verified
		}
	}
	return nil
}

func (r *fakeMentorRepo) CountAvailable(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.eligibleByTrust(nil)), nil
}

func (r *fakeMentorRepo) MatchingStats(ctx context.Context) (*models.MatchingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &models.MatchingStats{AverageTrustScore: models.DefaultTrustScore}
	companies := make(map[string]struct{})
	sum := 0
	for _, m := range r.s.mentors {
		if !m.IsVerified {
			continue
		}
		stats.TotalMentors++
		if m.IsAcceptingQuestions {
			stats.AvailableMentors++
		}
		companies[m.CompanyID] = struct{}{}
		sum += m.TrustScore
	}
	stats.CompaniesWithMentors = len(companies)
	if stats.TotalMentors > 0 {
		stats.AverageTrustScore = float64(sum) / float64(stats.TotalMentors)
	}
	return stats, nil
}

func (r *fakeMentorRepo) CompanySummaries(ctx context.Context) ([]models.CompanyMentorSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.CompanyMentorSummary, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		row := models.CompanyMentorSummary{CompanyID: c.ID, CompanyName: c.Name}
		for _, m := range r.s.mentors {
			if m.CompanyID != c.ID || !m.IsVerified {
				continue
			}
			row.VerifiedCount++
			if m.IsAcceptingQuestions {
				row.AvailableCount++
			}
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeCompanyRepo struct{ s *fakeStore }

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id string) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeCompanyRepo) ListIndustryPeers(ctx context.Context, companyID string) ([]models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var self *models.Company
	for i := range r.s.companies {
		if r.s.companies[i].ID == companyID {
			self = &r.s.companies[i]
		}
	}
	if self == nil || self.Industry == nil {
		return nil, nil
	}
	var out []models.Company
	for _, c := range r.s.companies {
		if c.ID != companyID && c.Industry != nil && *c.Industry == *self.Industry {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeQuestionRepo struct{ s *fakeStore }

func (r *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if question.ID == "" {
		question.ID = r.s.nextID("question")
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = testEpoch.Add(time.Duration(r.s.seq) * time.Second)
	}
	r.s.questions = append(r.s.questions, *question)
	return nil
}

func (r *fakeQuestionRepo) FindByID(ctx context.Context, id string) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.questions {
		if q.ID == id {
			copied := q
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeQuestionRepo) ListPending(ctx context.Context) ([]models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Question
	for _, q := range r.s.questions {
		if q.IsPending() {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// List returns matches newest first, reading insertion order backwards.
func (r *fakeQuestionRepo) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var matched []models.Question
	for i := len(r.s.questions) - 1; i >= 0; i-- {
		q := r.s.questions[i]
		if filter.Status != nil && q.Status != *filter.Status {
			continue
		}
		if filter.CompanyID != "" && q.CompanyID != filter.CompanyID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(q.Title), search) && !strings.Contains(strings.ToLower(q.Body), search) {
			continue
		}
		matched = append(matched, q)
	}
	return fakePage(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *fakeQuestionRepo) CountPendingByCompany(ctx context.Context, companyID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, q := range r.s.questions {
		if q.CompanyID == companyID && q.IsPending() {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuestionRepo) CountStaleByCompany(ctx context.Context, companyID string, before time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, q := range r.s.questions {
		if q.CompanyID == companyID && q.IsPending() && q.CreatedAt.Before(before) {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuestionRepo) CountPending(ctx context.Context, urgency *models.QuestionUrgency) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, q := range r.s.questions {
		if q.IsPending() && (urgency == nil || q.Urgency == *urgency) {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuestionRepo) ListCompanyIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, q := range r.s.questions {
		if q.StudentID == studentID && !seen[q.CompanyID] {
			seen[q.CompanyID] = true
			out = append(out, q.CompanyID)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Answer(ctx context.Context, resp *models.Response) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.questions {
		if r.s.questions[i].ID != resp.QuestionID {
			continue
		}
		if !r.s.questions[i].IsPending() {
			return false, nil
		}
		r.s.questions[i].Status = models.QuestionStatusAnswered
		if resp.ID == "" {
			resp.ID = r.s.nextID("resp")
		}
		r.s.responses = append(r.s.responses, *resp)
		return true, nil
	}
	return false, nil
}

type fakeResponseRepo struct{ s *fakeStore }

func (r *fakeResponseRepo) FindByQuestionID(ctx context.Context, questionID string) (*models.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, resp := range r.s.responses {
		if resp.QuestionID == questionID {
			copied := resp
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeResponseRepo) CountByMentor(ctx context.Context, mentorID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, resp := range r.s.responses {
		if resp.MentorID == mentorID {
			n++
		}
	}
	return n, nil
}

func (r *fakeResponseRepo) ListByMentor(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Response
	for i := len(r.s.responses) - 1; i >= 0; i-- {
		if r.s.responses[i].MentorID == filter.MentorID {
			matched = append(matched, r.s.responses[i])
		}
	}
	return fakePage(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *fakeResponseRepo) CountPendingLoad(ctx context.Context, mentorID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pending := make(map[string]bool)
	for _, q := range r.s.questions {
		if q.IsPending() {
			pending[q.ID] = true
		}
	}
	n := 0
	for _, resp := range r.s.responses {
		if resp.MentorID == mentorID && pending[resp.QuestionID] {
			n++
		}
	}
	return n, nil
}

type fakeFeedbackRepo struct{ s *fakeStore }

func (r *fakeFeedbackRepo) Upsert(ctx context.Context, feedback *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.feedback {
		if r.s.feedback[i].QuestionID == feedback.QuestionID {
			existing := r.s.feedback[i]
			feedback.ID = existing.ID
			feedback.CreatedAt = existing.CreatedAt
			feedback.UpdatedAt = testEpoch.Add(time.Hour)
			r.s.feedback[i] = *feedback
			return nil
		}
	}
	feedback.ID = r.s.nextID("feedback")
	feedback.CreatedAt = testEpoch
	feedback.UpdatedAt = testEpoch
	r.s.feedback = append(r.s.feedback, *feedback)
	return nil
}

func (r *fakeFeedbackRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Feedback
	for i := len(r.s.feedback) - 1; i >= 0; i-- {
		if r.s.feedback[i].MentorID == mentorID {
			out = append(out, r.s.feedback[i])
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) OutcomeCounts(ctx context.Context, mentorID string) ([]models.FeedbackOutcomeCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[models.FeedbackOutcome]int)
	for _, f := range r.s.feedback {
		if mentorID == "" || f.MentorID == mentorID {
			counts[f.Outcome]++
		}
	}
	var out []models.FeedbackOutcomeCount
	for _, outcome := range models.FeedbackOutcomes {
		if n := counts[outcome]; n > 0 {
			out = append(out, models.FeedbackOutcomeCount{Outcome: outcome, Count: n})
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) AverageRating(ctx context.Context, mentorID string) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum, n := 0, 0
	for _, f := range r.s.feedback {
		if f.Rating == nil || (mentorID != "" && f.MentorID != mentorID) {
			continue
		}
		sum += *f.Rating
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type fakeReferralRepo struct{ s *fakeStore }

func (r *fakeReferralRepo) Create(ctx context.Context, referral *models.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	referral.ID = r.s.nextID("referral")
	referral.RequestedAt = testEpoch
	r.s.referrals = append(r.s.referrals, *referral)
	return nil
}

func (r *fakeReferralRepo) FindByID(ctx context.Context, id string) (*models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ref := range r.s.referrals {
		if ref.ID == id {
			copied := ref
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeReferralRepo) Respond(ctx context.Context, id string, status models.ReferralStatus, message *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.referrals {
		if r.s.referrals[i].ID == id && r.s.referrals[i].Status == models.ReferralStatusPending {
			now := testEpoch.Add(time.Hour)
			r.s.referrals[i].Status = status
			r.s.referrals[i].MentorResponse = message
			r.s.referrals[i].RespondedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReferralRepo) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Referral
	for _, ref := range r.s.referrals {
		if filter.StudentID != "" && ref.StudentID != filter.StudentID {
			continue
		}
		if filter.MentorID != "" && ref.MentorID != filter.MentorID {
			continue
		}
		if filter.Status != nil && ref.Status != *filter.Status {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// fakePage slices items the way LIMIT/OFFSET would, with the repository defaults.
func fakePage[T any](items []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// requireAppError asserts err is a typed error carrying want's code.
func requireAppError(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
}
