package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/models"
)

func TestFeedbackRepositoryUpsertKeepsOriginalRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := time.Date(2024, 2, 2, 3, 4, 5, 0, time.UTC)
	rating := 4
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (question_id) DO UPDATE SET")).
		WithArgs(sqlmock.AnyArg(), "q1", "r1", "s1", "m1", models.OutcomeGotInterview, 4, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("f-original", created, updated))

	fb := &models.Feedback{QuestionID: "q1", ResponseID: "r1", StudentID: "s1", MentorID: "m1", Outcome: models.OutcomeGotInterview, Rating: &rating}
	require.NoError(t, repo.Upsert(context.Background(), fb))
	assert.Equal(t, "f-original", fb.ID)
	assert.Equal(t, created, fb.CreatedAt)
	assert.Equal(t, updated, fb.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryOutcomeCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT outcome, COUNT(*) AS count FROM feedback WHERE mentor_id = $1 GROUP BY outcome")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"outcome", "count"}).
			AddRow("got_interview", 1).
			AddRow("not_helpful", 1))

	counts, err := repo.OutcomeCounts(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.OutcomeGotInterview, counts[0].Outcome)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT outcome, COUNT(*) AS count FROM feedback GROUP BY outcome")).
		WillReturnRows(sqlmock.NewRows([]string{"outcome", "count"}))
	counts, err = repo.OutcomeCounts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryAverageRating(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(rating), 0) FROM feedback WHERE rating IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(3.6667))

	avg, err := repo.AverageRating(context.Background(), "")
	require.NoError(t, err)
	assert.InDelta(t, 3.6667, avg, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListByMentor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback WHERE mentor_id = $1 ORDER BY created_at DESC")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "response_id", "student_id", "mentor_id", "outcome", "rating", "comment", "created_at", "updated_at"}).
			AddRow("f2", "q2", "r2", "s1", "m1", "got_referral", 5, nil, now, now).
			AddRow("f1", "q1", "r1", "s1", "m1", "helpful", nil, "thanks", now.Add(-time.Hour), now.Add(-time.Hour)))

	items, err := repo.ListByMentor(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.OutcomeGotReferral, items[0].Outcome)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 5, *items[0].Rating)
	assert.Nil(t, items[1].Rating)
	require.NotNil(t, items[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}
