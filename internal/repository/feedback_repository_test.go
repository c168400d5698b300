package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sfa-api/internal/models"
)

func TestFeedbackRepositorySubmit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO session_feedback").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submission_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedback := &models.Feedback{SessionID: "ses-1", Rating: 4, Comment: "clear explanations"}
	history := &models.SubmissionHistory{SessionID: "ses-1", StudentID: "stu-1"}
	require.NoError(t, repo.Submit(context.Background(), feedback, history))
	require.NotEmpty(t, feedback.ID)
	require.False(t, history.SubmittedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO session_feedback").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submission_history").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	feedback := &models.Feedback{SessionID: "ses-1", Rating: 4, Comment: "again"}
	history := &models.SubmissionHistory{SessionID: "ses-1", StudentID: "stu-1"}
	err := repo.Submit(context.Background(), feedback, history)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryAverageRating(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"average", "total"}).AddRow(4.0, 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(rating) AS average, COUNT(*) AS total FROM session_feedback WHERE session_id = $1")).
		WithArgs("ses-1").
		WillReturnRows(rows)

	avg, count, err := repo.AverageRating(context.Background(), "ses-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	require.InDelta(t, 4.0, *avg, 1e-9)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryAverageRatingEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"average", "total"}).AddRow(nil, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(rating) AS average, COUNT(*) AS total FROM session_feedback WHERE session_id = $1")).
		WithArgs("ses-1").
		WillReturnRows(rows)

	avg, count, err := repo.AverageRating(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Nil(t, avg)
	require.Zero(t, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryHasSubmitted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM submission_history WHERE session_id = $1 AND student_id = $2 LIMIT 1")).
		WithArgs("ses-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM submission_history WHERE session_id = $1 AND student_id = $2 LIMIT 1")).
		WithArgs("ses-1", "stu-2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	submitted, err := repo.HasSubmitted(context.Background(), "ses-1", "stu-1")
	require.NoError(t, err)
	require.True(t, submitted)

	submitted, err = repo.HasSubmitted(context.Background(), "ses-1", "stu-2")
	require.NoError(t, err)
	require.False(t, submitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "rating", "comment", "created_at"}).
		AddRow("fb-1", "ses-1", 5, "great pacing", created).
		AddRow("fb-2", "ses-1", 3, "too fast", created)
	mock.ExpectQuery("SELECT id, session_id, rating, comment, created_at FROM session_feedback").
		WithArgs("ses-1").
		WillReturnRows(rows)

	records, err := repo.ListBySession(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "great pacing", records[0].Comment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListStudentsWithoutFeedback(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow("stu-2", "Quiet Student", "quiet@example.com")
	mock.ExpectQuery("SELECT st.id, st.name, st.email FROM students st").
		WithArgs("ses-1").
		WillReturnRows(rows)

	students, err := repo.ListStudentsWithoutFeedback(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "stu-2", students[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
