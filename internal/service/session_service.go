package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sfa-api/internal/models"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Session, error)
	ListAll(ctx context.Context) ([]models.Session, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Session, error)
}

// CreateSessionRequest holds the payload for creating a session.
type CreateSessionRequest struct {
	Date time.Time `json:"date" validate:"required"`
}

// sessionDateLayouts lists the accepted wire formats for the session date.
// Clients send either a full timestamp or a bare calendar date.
var sessionDateLayouts = []string{time.RFC3339, "2006-01-02"}

// UnmarshalJSON parses the date from either accepted layout. An empty or
// absent date is left zero for the validator to reject.
func (r *CreateSessionRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Date == "" {
		return nil
	}
	for _, layout := range sessionDateLayouts {
		if t, err := time.Parse(layout, raw.Date); err == nil {
			r.Date = t
			return nil
		}
	}
	return fmt.Errorf("date must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

// SessionService handles session use-cases.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// Create persists a new session owned by the acting teacher.
func (s *SessionService) Create(ctx context.Context, teacherID string, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "session date is required")
	}
	session := &models.Session{Date: req.Date, TeacherID: teacherID}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// ListForTeacher returns sessions owned by the acting teacher.
func (s *SessionService) ListForTeacher(ctx context.Context, teacherID string) ([]models.Session, error) {
	sessions, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// ListAll returns every session in the system. The list is deliberately
// unscoped so students can discover sessions before holding any relation to
// them.
func (s *SessionService) ListAll(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// ListForStudent returns sessions the acting student is enrolled in.
func (s *SessionService) ListForStudent(ctx context.Context, studentID string) ([]models.Session, error) {
	sessions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}
