package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sfa-api/internal/models"
	"github.com/noah-isme/sfa-api/internal/repository"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
	"github.com/noah-isme/sfa-api/pkg/export"
)

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Exists(ctx context.Context, sessionID, studentID string) (bool, error)
}

type feedbackRepository interface {
	Submit(ctx context.Context, feedback *models.Feedback, history *models.SubmissionHistory) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Feedback, error)
	AverageRating(ctx context.Context, sessionID string) (*float64, int, error)
	HasSubmitted(ctx context.Context, sessionID, studentID string) (bool, error)
	ListStudentsWithoutFeedback(ctx context.Context, sessionID string) ([]models.StudentProfile, error)
}

// JoinSessionRequest holds the payload for joining a session.
type JoinSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// SubmitFeedbackRequest holds the payload for submitting feedback. The rating
// scale is enforced client-side; the server only requires presence.
type SubmitFeedbackRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Rating    int    `json:"rating" validate:"required"`
	Feedback  string `json:"feedback" validate:"required"`
}

// ExportFormat selects the rendering of a feedback export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// FeedbackService handles enrollment, submission and aggregation use-cases.
type FeedbackService struct {
	sessions    sessionFinder
	enrollments enrollmentRepository
	feedback    feedbackRepository
	cache       *CacheService
	metrics     *MetricsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	exportLimit int
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFeedbackService constructs the feedback service. exportLimit caps the
// number of rows in a rendered export; zero means no cap.
func NewFeedbackService(sessions sessionFinder, enrollments enrollmentRepository, feedback feedbackRepository, cache *CacheService, metrics *MetricsService, exportLimit int, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		sessions:    sessions,
		enrollments: enrollments,
		feedback:    feedback,
		cache:       cache,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		exportLimit: exportLimit,
		validator:   validate,
		logger:      logger,
	}
}

// Join enrolls the acting student into a session. A second join attempt is an
// explicit conflict, not a silent success.
func (s *FeedbackService) Join(ctx context.Context, studentID string, req JoinSessionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "session id is required")
	}
	if _, err := s.sessions.FindByID(ctx, req.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	enrollment := &models.Enrollment{SessionID: req.SessionID, StudentID: studentID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "session already joined")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join session")
	}
	return nil
}

// Submit records anonymous feedback for an enrolled student. Both guards run
// before any write; the feedback record and the history row are written in
// one transaction by the repository.
func (s *FeedbackService) Submit(ctx context.Context, studentID string, req SubmitFeedbackRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "session id, rating and feedback are required")
	}

	if _, err := s.sessions.FindByID(ctx, req.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	enrolled, err := s.enrollments.Exists(ctx, req.SessionID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		s.recordSubmission("rejected")
		return appErrors.Clone(appErrors.ErrForbidden, "student is not part of the session")
	}

	submitted, err := s.feedback.HasSubmitted(ctx, req.SessionID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission history")
	}
	if submitted {
		s.recordSubmission("duplicate")
		return appErrors.Clone(appErrors.ErrConflict, "feedback already submitted")
	}

	record := &models.Feedback{SessionID: req.SessionID, Rating: req.Rating, Comment: req.Feedback}
	history := &models.SubmissionHistory{SessionID: req.SessionID, StudentID: studentID}
	if err := s.feedback.Submit(ctx, record, history); err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost the race against a concurrent submit for the same pair.
			s.recordSubmission("duplicate")
			return appErrors.Clone(appErrors.ErrConflict, "feedback already submitted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit feedback")
	}

	s.recordSubmission("accepted")
	s.cache.Invalidate(ctx, sessionCachePattern(req.SessionID))
	return nil
}

// ListForSession returns all feedback records for a session. Records are
// anonymous by construction; submission history is never joined here.
func (s *FeedbackService) ListForSession(ctx context.Context, sessionID string) ([]models.Feedback, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	cacheKey := feedbackCacheKey(sessionID)
	var cached []models.Feedback
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	records, err := s.feedback.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	if records == nil {
		records = []models.Feedback{}
	}
	s.cache.Set(ctx, cacheKey, records)
	return records, nil
}

// AverageRating returns the mean rating for a session. With no feedback the
// average is null and the count zero.
func (s *FeedbackService) AverageRating(ctx context.Context, sessionID string) (*models.RatingSummary, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	cacheKey := ratingCacheKey(sessionID)
	var cached models.RatingSummary
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	avg, count, err := s.feedback.AverageRating(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute rating")
	}
	summary := &models.RatingSummary{TotalRating: avg, Count: count}
	s.cache.Set(ctx, cacheKey, summary)
	return summary, nil
}

// StudentsWithoutFeedback returns enrolled students with no submission for
// the session.
func (s *FeedbackService) StudentsWithoutFeedback(ctx context.Context, sessionID string) ([]models.StudentProfile, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	students, err := s.feedback.ListStudentsWithoutFeedback(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.StudentProfile{}
	}
	return students, nil
}

// ExportResult carries a rendered feedback export.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders a session's anonymous feedback as CSV or PDF.
func (s *FeedbackService) Export(ctx context.Context, sessionID string, format ExportFormat) (*ExportResult, error) {
	records, err := s.ListForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.exportLimit > 0 && len(records) > s.exportLimit {
		records = records[:s.exportLimit]
	}

	dataset := export.Dataset{Headers: []string{"Rating", "Feedback", "Submitted At"}}
	for _, record := range records {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(record.Rating),
			record.Comment,
			record.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("feedback-%s.csv", sessionID)}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, "Session Feedback")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("feedback-%s.pdf", sessionID)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *FeedbackService) requireSession(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return nil
}

func (s *FeedbackService) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func feedbackCacheKey(sessionID string) string {
	return fmt.Sprintf("feedback:session:%s:records", sessionID)
}

func ratingCacheKey(sessionID string) string {
	return fmt.Sprintf("feedback:session:%s:rating", sessionID)
}

func sessionCachePattern(sessionID string) string {
	return fmt.Sprintf("feedback:session:%s:*", sessionID)
}
