package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sfa-api/internal/models"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
)

type mockSessionFinder struct {
	sessions map[string]*models.Session
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentRepo struct {
	enrolled  map[string]bool // "sessionID/studentID"
	createErr error
	created   []*models.Enrollment
}

func enrollmentKey(sessionID, studentID string) string {
	return sessionID + "/" + studentID
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.enrolled == nil {
		m.enrolled = make(map[string]bool)
	}
	m.enrolled[enrollmentKey(enrollment.SessionID, enrollment.StudentID)] = true
	m.created = append(m.created, enrollment)
	return nil
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	return m.enrolled[enrollmentKey(sessionID, studentID)], nil
}

type mockFeedbackRepo struct {
	records    map[string][]models.Feedback
	submitted  map[string]bool // "sessionID/studentID"
	average    *float64
	count      int
	silent     []models.StudentProfile
	submitErr  error
	submitCnt  int
	lastRecord *models.Feedback
}

func (m *mockFeedbackRepo) Submit(ctx context.Context, feedback *models.Feedback, history *models.SubmissionHistory) error {
	m.submitCnt++
	if m.submitErr != nil {
		return m.submitErr
	}
	if m.records == nil {
		m.records = make(map[string][]models.Feedback)
	}
	if m.submitted == nil {
		m.submitted = make(map[string]bool)
	}
	m.records[feedback.SessionID] = append(m.records[feedback.SessionID], *feedback)
	m.submitted[enrollmentKey(history.SessionID, history.StudentID)] = true
	m.lastRecord = feedback
	return nil
}

func (m *mockFeedbackRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Feedback, error) {
	return m.records[sessionID], nil
}

func (m *mockFeedbackRepo) AverageRating(ctx context.Context, sessionID string) (*float64, int, error) {
	return m.average, m.count, nil
}

func (m *mockFeedbackRepo) HasSubmitted(ctx context.Context, sessionID, studentID string) (bool, error) {
	return m.submitted[enrollmentKey(sessionID, studentID)], nil
}

func (m *mockFeedbackRepo) ListStudentsWithoutFeedback(ctx context.Context, sessionID string) ([]models.StudentProfile, error) {
	return m.silent, nil
}

// memoryCacheRepo is an in-process CacheRepository used to observe cache
// interactions without a Redis instance.
type memoryCacheRepo struct {
	entries map[string]string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string]string)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal([]byte(payload), dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = string(payload)
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func newFeedbackService(sessions *mockSessionFinder, enrollments *mockEnrollmentRepo, feedback *mockFeedbackRepo, cache *CacheService) *FeedbackService {
	return NewFeedbackService(sessions, enrollments, feedback, cache, nil, 0, validator.New(), zap.NewNop())
}

func sessionFixture(id string) *mockSessionFinder {
	return &mockSessionFinder{sessions: map[string]*models.Session{
		id: {ID: id, Date: time.Now(), TeacherID: "tch-1"},
	}}
}

func TestJoinSession(t *testing.T) {
	enrollments := &mockEnrollmentRepo{}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, &mockFeedbackRepo{}, nil)

	require.NoError(t, svc.Join(context.Background(), "stu-1", JoinSessionRequest{SessionID: "ses-1"}))
	require.Len(t, enrollments.created, 1)
	assert.Equal(t, "stu-1", enrollments.created[0].StudentID)
}

func TestJoinUnknownSession(t *testing.T) {
	enrollments := &mockEnrollmentRepo{}
	svc := newFeedbackService(&mockSessionFinder{}, enrollments, &mockFeedbackRepo{}, nil)

	err := svc.Join(context.Background(), "stu-1", JoinSessionRequest{SessionID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
	assert.Empty(t, enrollments.created)
}

func TestJoinTwiceConflicts(t *testing.T) {
	enrollments := &mockEnrollmentRepo{createErr: &pq.Error{Code: "23505"}}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, &mockFeedbackRepo{}, nil)

	err := svc.Join(context.Background(), "stu-1", JoinSessionRequest{SessionID: "ses-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
}

func TestSubmitFeedback(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"ses-1/stu-1": true}}
	feedback := &mockFeedbackRepo{}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, feedback, nil)

	err := svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "ses-1", Rating: 5, Feedback: "great pacing",
	})
	require.NoError(t, err)
	require.NotNil(t, feedback.lastRecord)
	assert.Equal(t, 5, feedback.lastRecord.Rating)
	assert.Equal(t, "great pacing", feedback.lastRecord.Comment)
}

func TestSubmitNotEnrolled(t *testing.T) {
	feedback := &mockFeedbackRepo{}
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, nil)

	err := svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "ses-1", Rating: 5, Feedback: "sneaky",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErr.Status)
	assert.Equal(t, "student is not part of the session", appErr.Message)
	// The rejection happens before any write.
	assert.Zero(t, feedback.submitCnt)
}

func TestSubmitUnknownSession(t *testing.T) {
	svc := newFeedbackService(&mockSessionFinder{}, &mockEnrollmentRepo{}, &mockFeedbackRepo{}, nil)

	err := svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "missing", Rating: 5, Feedback: "hello",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"ses-1/stu-1": true}}
	feedback := &mockFeedbackRepo{submitted: map[string]bool{"ses-1/stu-1": true}}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, feedback, nil)

	err := svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "ses-1", Rating: 4, Feedback: "again",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.Zero(t, feedback.submitCnt)
}

func TestSubmitLosesRaceConflicts(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"ses-1/stu-1": true}}
	feedback := &mockFeedbackRepo{submitErr: &pq.Error{Code: "23505"}}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, feedback, nil)

	err := svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "ses-1", Rating: 4, Feedback: "raced",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestAverageRating(t *testing.T) {
	avg := 4.0
	feedback := &mockFeedbackRepo{average: &avg, count: 3}
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, nil)

	summary, err := svc.AverageRating(context.Background(), "ses-1")
	require.NoError(t, err)
	require.NotNil(t, summary.TotalRating)
	assert.InDelta(t, 4.0, *summary.TotalRating, 1e-9)
	assert.Equal(t, 3, summary.Count)
}

func TestAverageRatingEmptySession(t *testing.T) {
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, &mockFeedbackRepo{}, nil)

	summary, err := svc.AverageRating(context.Background(), "ses-1")
	require.NoError(t, err)
	assert.Nil(t, summary.TotalRating)
	assert.Zero(t, summary.Count)

	payload, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalRating": null, "count": 0}`, string(payload))
}

func TestListForSessionEmptyIsNotNil(t *testing.T) {
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, &mockFeedbackRepo{}, nil)

	records, err := svc.ListForSession(context.Background(), "ses-1")
	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListForSessionUsesCache(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	feedback := &mockFeedbackRepo{records: map[string][]models.Feedback{
		"ses-1": {{ID: "fb-1", SessionID: "ses-1", Rating: 5, Comment: "great"}},
	}}
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, cache)

	first, err := svc.ListForSession(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, repo.entries, "feedback:session:ses-1:records")

	// Mutate the backing store; the cached copy must win.
	feedback.records["ses-1"] = nil
	second, err := svc.ListForSession(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "fb-1", second[0].ID)
}

func TestSubmitInvalidatesSessionCache(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"ses-1/stu-1": true}}
	svc := newFeedbackService(sessionFixture("ses-1"), enrollments, &mockFeedbackRepo{}, cache)

	_, err := svc.AverageRating(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Contains(t, repo.entries, "feedback:session:ses-1:rating")

	err = svc.Submit(context.Background(), "stu-1", SubmitFeedbackRequest{
		SessionID: "ses-1", Rating: 5, Feedback: "fresh",
	})
	require.NoError(t, err)
	assert.NotContains(t, repo.entries, "feedback:session:ses-1:rating")
}

func TestStudentsWithoutFeedback(t *testing.T) {
	feedback := &mockFeedbackRepo{silent: []models.StudentProfile{
		{ID: "stu-2", Name: "Quiet Student", Email: "quiet@example.com"},
	}}
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, nil)

	students, err := svc.StudentsWithoutFeedback(context.Background(), "ses-1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "stu-2", students[0].ID)
}

func TestExportCSV(t *testing.T) {
	created := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	feedback := &mockFeedbackRepo{records: map[string][]models.Feedback{
		"ses-1": {{ID: "fb-1", SessionID: "ses-1", Rating: 5, Comment: "great pacing", CreatedAt: created}},
	}}
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, nil)

	result, err := svc.Export(context.Background(), "ses-1", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "feedback-ses-1.csv", result.Filename)
	content := string(result.Content)
	assert.Contains(t, content, "Rating,Feedback,Submitted At")
	assert.Contains(t, content, "5,great pacing,2026-08-20 14:30")
}

func TestExportHonorsRowLimit(t *testing.T) {
	feedback := &mockFeedbackRepo{records: map[string][]models.Feedback{
		"ses-1": {
			{ID: "fb-1", SessionID: "ses-1", Rating: 5, Comment: "one"},
			{ID: "fb-2", SessionID: "ses-1", Rating: 4, Comment: "two"},
			{ID: "fb-3", SessionID: "ses-1", Rating: 3, Comment: "three"},
		},
	}}
	svc := NewFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, feedback, nil, nil, 2, validator.New(), zap.NewNop())

	result, err := svc.Export(context.Background(), "ses-1", ExportCSV)
	require.NoError(t, err)
	content := string(result.Content)
	assert.Contains(t, content, "one")
	assert.Contains(t, content, "two")
	assert.NotContains(t, content, "three")
}

func TestExportUnknownFormat(t *testing.T) {
	svc := newFeedbackService(sessionFixture("ses-1"), &mockEnrollmentRepo{}, &mockFeedbackRepo{}, nil)

	_, err := svc.Export(context.Background(), "ses-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
