package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var mentorRowColumns = []string{"id", "user_id", "full_name", "company_id", "job_title", "trust_score", "is_verified", "is_accepting_questions", "created_at", "updated_at"}

func TestMentorRepositoryListEligibleByCompany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(mentorRowColumns).
		AddRow("m1", nil, "Ayu", "c1", "Engineer", 94, true, true, now, now).
		AddRow("m2", nil, "Budi", "c1", nil, 60, true, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM mentors")).
		WithArgs("c1").
		WillReturnRows(rows)

	mentors, err := repo.ListEligibleByCompany(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, mentors, 2)
	assert.Equal(t, "m1", mentors[0].ID)
	assert.Equal(t, 94, mentors[0].TrustScore)
	assert.True(t, mentors[0].Eligible())
	assert.Nil(t, mentors[1].JobTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryCreateAndUpdateTrust(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectExec("INSERT INTO mentors").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Ayu", "c1", sqlmock.AnyArg(), 50, true, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mentor := &models.Mentor{FullName: "Ayu", CompanyID: "c1", TrustScore: models.DefaultTrustScore, IsVerified: true, IsAcceptingQuestions: true}
	require.NoError(t, repo.Create(context.Background(), mentor))
	assert.NotEmpty(t, mentor.ID)
	assert.False(t, mentor.CreatedAt.IsZero())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE mentors SET trust_score = $2")).
		WithArgs(mentor.ID, 57, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateTrustScore(context.Background(), mentor.ID, 57))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryListTopEligibleScopesCompanies(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("AND company_id = ANY($1) ORDER BY trust_score DESC, created_at ASC, id ASC LIMIT 5")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(mentorRowColumns).AddRow("m3", nil, "Citra", "c2", nil, 95, true, true, now, now))

	mentors, err := repo.ListTopEligible(context.Background(), []string{"c2", "c3"}, 0)
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, "m3", mentors[0].ID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_verified = TRUE AND is_accepting_questions = TRUE ORDER BY trust_score DESC, created_at ASC, id ASC LIMIT 3")).
		WillReturnRows(sqlmock.NewRows(mentorRowColumns))
	mentors, err = repo.ListTopEligible(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, mentors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryMatchingStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(AVG(trust_score), 50) AS avg_trust_score")).
		WillReturnRows(sqlmock.NewRows([]string{"total_mentors", "available_mentors", "companies_with_mentors", "avg_trust_score"}).
			AddRow(4, 3, 2, 71.5))

	stats, err := repo.MatchingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalMentors)
	assert.Equal(t, 3, stats.AvailableMentors)
	assert.Equal(t, 2, stats.CompaniesWithMentors)
	assert.InDelta(t, 71.5, stats.AverageTrustScore, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
