package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/dto"
	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

func newFeedbackFixture(store *fakeStore) *FeedbackService {
	trust := newTrustFixture(store)
	return NewFeedbackService(store.questionRepo(), store.responseRepo(), store.feedbackRepo(), trust, nil, nil, NewMetricsService(), nil, nil)
}

func intPtr(v int) *int { return &v }

func TestFeedbackSubmitRecomputesTrust(t *testing.T) {
	store := newFakeStore()
	store.addMentor("m1", "c1", 50, true, true)
	store.addQuestion("q1", "c1", models.UrgencyNormal, models.QuestionStatusPending, testEpoch)
	store.answer("q1", "m1")
	svc := newFeedbackFixture(store)

	result, err := svc.Submit(context.Background(), dto.SubmitFeedbackRequest{
		QuestionID: "q1",
		StudentID:  "student-1",
		Outcome:    models.OutcomeGotReferral,
		Rating:     intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 65, result.TrustScore)
	assert.Equal(t, models.BadgeSilver, result.Badge)
	assert.Equal(t, "m1", result.Feedback.MentorID)
	assert.NotEmpty(t, result.Feedback.ResponseID)
	assert.Equal(t, 65, store.mentor("m1").TrustScore)
}

func TestFeedbackSubmitOnPendingQuestionChangesNothing(t *testing.T) {
	store := newFakeStore()
	store.addMentor("m1", "c1", 50, true, true)
	store.addQuestion("q1", "c1", models.UrgencyNormal, models.QuestionStatusPending, testEpoch)
	svc := newFeedbackFixture(store)

	_, err := svc.Submit(context.Background(), dto.SubmitFeedbackRequest{
		QuestionID: "q1",
		StudentID:  "student-1",
		Outcome:    models.OutcomeHelpful,
	})
	requireAppError(t, err, appErrors.ErrInvalidState)
	assert.Zero(t, store.feedbackCount())
	assert.Equal(t, 50, store.mentor("m1").TrustScore)
	assert.Zero(t, store.trustWrites)
}

func TestFeedbackSubmitReplacesEarlierFeedback(t *testing.T) {
	store := newFakeStore()
	store.addMentor("m1", "c1", 50, true, true)
	store.addQuestion("q1", "c1", models.UrgencyNormal, models.QuestionStatusPending, testEpoch)
	store.answer("q1", "m1")
	svc := newFeedbackFixture(store)
	ctx := context.Background()

	first, err := svc.Submit(ctx, dto.SubmitFeedbackRequest{QuestionID: "q1", StudentID: "student-1", Outcome: models.OutcomeHelpful})
	require.NoError(t, err)
	assert.Equal(t, 55, first.TrustScore)

	second, err := svc.Submit(ctx, dto.SubmitFeedbackRequest{QuestionID: "q1", StudentID: "student-1", Outcome: models.OutcomeNotHelpful, Rating: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 47, second.TrustScore)
	assert.Equal(t, first.Feedback.ID, second.Feedback.ID)
	assert.Equal(t, 1, store.feedbackCount())

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFeedback)
	assert.Equal(t, 1, stats.Counts[models.OutcomeNotHelpful])
	assert.Zero(t, stats.Counts[models.OutcomeHelpful])
}

func TestFeedbackSubmitValidation(t *testing.T) {
	store := newFakeStore()
	svc := newFeedbackFixture(store)

	cases := map[string]dto.SubmitFeedbackRequest{
		"unknown outcome": {QuestionID: "q1", StudentID: "s1", Outcome: "amazing"},
		"missing student": {QuestionID: "q1", Outcome: models.OutcomeHelpful},
		"rating too high": {QuestionID: "q1", StudentID: "s1", Outcome: models.OutcomeHelpful, Rating: intPtr(6)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), req)
			requireAppError(t, err, appErrors.ErrValidation)
		})
	}
}

func TestFeedbackSubmitUnknownQuestion(t *testing.T) {
	svc := newFeedbackFixture(newFakeStore())
	_, err := svc.Submit(context.Background(), dto.SubmitFeedbackRequest{QuestionID: "missing", StudentID: "s1", Outcome: models.OutcomeHelpful})
	requireAppError(t, err, appErrors.ErrNotFound)
}

// failingTrust fails the inline recompute but schedules retries through the real engine.
type failingTrust struct {
	*TrustService
}

func (f failingTrust) Recompute(ctx context.Context, mentorID string) (int, error) {
	return 0, errors.New("store unavailable")
}

func TestFeedbackSubmitRecomputeFailureQueuesRetry(t *testing.T) {
	store := newFakeStore()
	store.addMentor("m1", "c1", 50, true, true)
	store.addQuestion("q1", "c1", models.UrgencyNormal, models.QuestionStatusPending, testEpoch)
	store.answer("q1", "m1")
	trust := newTrustFixture(store)
	retries := &recordingEnqueuer{}
	svc := NewFeedbackService(store.questionRepo(), store.responseRepo(), store.feedbackRepo(), failingTrust{trust}, retries, nil, NewMetricsService(), nil, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, dto.SubmitFeedbackRequest{QuestionID: "q1", StudentID: "student-1", Outcome: models.OutcomeGotReferral})
	require.Error(t, err)
	assert.Equal(t, 1, store.feedbackCount(), "feedback stays stored")
	assert.Equal(t, 50, store.mentor("m1").TrustScore)

	require.Len(t, retries.jobs, 1)
	assert.Equal(t, JobTypeTrustRecompute, retries.jobs[0].Type)
	require.NoError(t, trust.HandleJob(ctx, retries.jobs[0]))
	assert.Equal(t, 65, store.mentor("m1").TrustScore)
}

func TestFeedbackStats(t *testing.T) {
	store := newFakeStore()
	svc := newFeedbackFixture(store)
	ctx := context.Background()

	empty, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalFeedback)
	assert.Len(t, empty.Counts, len(models.FeedbackOutcomes))
	assert.Nil(t, empty.Percentages)

	repo := store.feedbackRepo()
	require.NoError(t, repo.Upsert(ctx, &models.Feedback{QuestionID: "q1", MentorID: "m1", Outcome: models.OutcomeHelpful, Rating: intPtr(5)}))
	require.NoError(t, repo.Upsert(ctx, &models.Feedback{QuestionID: "q2", MentorID: "m1", Outcome: models.OutcomeHelpful, Rating: intPtr(4)}))
	require.NoError(t, repo.Upsert(ctx, &models.Feedback{QuestionID: "q3", MentorID: "m2", Outcome: models.OutcomeGotReferral, Rating: intPtr(4)}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFeedback)
	assert.Equal(t, 2, stats.Counts[models.OutcomeHelpful])
	assert.InDelta(t, 66.666, stats.Percentages[models.OutcomeHelpful], 0.01)
	assert.InDelta(t, 33.333, stats.Percentages[models.OutcomeGotReferral], 0.01)
	assert.Zero(t, stats.Percentages[models.OutcomeNotHelpful])
	assert.Equal(t, 4.33, stats.AverageRating)
}
