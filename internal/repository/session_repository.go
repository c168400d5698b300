package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sfa-api/internal/models"
)

// SessionRepository handles persistence of feedback sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, date, teacher_id, created_at)
        VALUES (:id, :date, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session by its id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, date, teacher_id, created_at FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByTeacher returns every session owned by the teacher in insertion order.
func (r *SessionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Session, error) {
	const query = `SELECT id, date, teacher_id, created_at FROM sessions WHERE teacher_id = $1 ORDER BY created_at`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher sessions: %w", err)
	}
	return sessions, nil
}

// ListAll returns every session in the system. Students discover sessions to
// join through this unscoped list.
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.Session, error) {
	const query = `SELECT id, date, teacher_id, created_at FROM sessions ORDER BY created_at`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListByStudent returns sessions the student has an enrollment for.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Session, error) {
	const query = `SELECT s.id, s.date, s.teacher_id, s.created_at FROM sessions s
        INNER JOIN enrollments e ON e.session_id = s.id
        WHERE e.student_id = $1 ORDER BY s.created_at`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student sessions: %w", err)
	}
	return sessions, nil
}
