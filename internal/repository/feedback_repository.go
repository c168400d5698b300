package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sfa-api/internal/models"
)

// FeedbackRepository handles feedback records and submission history.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Submit stores the anonymous feedback record and the submission-history row
// in a single transaction. The feedback insert carries no student reference;
// the history insert is the duplicate gate, so both must land together or the
// student could end up either unable to submit or able to submit twice.
func (r *FeedbackRepository) Submit(ctx context.Context, feedback *models.Feedback, history *models.SubmissionHistory) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now
	}
	if history.SubmittedAt.IsZero() {
		history.SubmittedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertFeedback = `INSERT INTO session_feedback (id, session_id, rating, comment, created_at)
        VALUES (:id, :session_id, :rating, :comment, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertFeedback, feedback); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	const insertHistory = `INSERT INTO submission_history (session_id, student_id, submitted_at)
        VALUES (:session_id, :student_id, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, insertHistory, history); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert submission history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit tx: %w", err)
	}
	return nil
}

// ListBySession returns all feedback records for a session. The query never
// touches submission_history, which keeps the records anonymous.
func (r *FeedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Feedback, error) {
	const query = `SELECT id, session_id, rating, comment, created_at FROM session_feedback
        WHERE session_id = $1 ORDER BY created_at`
	var records []models.Feedback
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session feedback: %w", err)
	}
	return records, nil
}

// AverageRating returns the mean rating and the number of feedback rows for a
// session. The average is null when the session has no feedback.
func (r *FeedbackRepository) AverageRating(ctx context.Context, sessionID string) (*float64, int, error) {
	const query = `SELECT AVG(rating) AS average, COUNT(*) AS total FROM session_feedback WHERE session_id = $1`
	var row struct {
		Average sql.NullFloat64 `db:"average"`
		Total   int             `db:"total"`
	}
	if err := r.db.GetContext(ctx, &row, query, sessionID); err != nil {
		return nil, 0, fmt.Errorf("average session rating: %w", err)
	}
	if !row.Average.Valid {
		return nil, row.Total, nil
	}
	avg := row.Average.Float64
	return &avg, row.Total, nil
}

// HasSubmitted checks whether the student already submitted feedback for the
// session.
func (r *FeedbackRepository) HasSubmitted(ctx context.Context, sessionID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM submission_history WHERE session_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, sessionID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check submission history: %w", err)
	}
	return true, nil
}

// ListStudentsWithoutFeedback returns public profiles of enrolled students
// with no submission-history row for the session: the enrolled-minus-submitted
// set difference, computed in one query.
func (r *FeedbackRepository) ListStudentsWithoutFeedback(ctx context.Context, sessionID string) ([]models.StudentProfile, error) {
	const query = `SELECT st.id, st.name, st.email FROM students st
        INNER JOIN enrollments e ON e.student_id = st.id
        LEFT JOIN submission_history h ON h.session_id = e.session_id AND h.student_id = e.student_id
        WHERE e.session_id = $1 AND h.student_id IS NULL`
	var students []models.StudentProfile
	if err := r.db.SelectContext(ctx, &students, query, sessionID); err != nil {
		return nil, fmt.Errorf("list students without feedback: %w", err)
	}
	return students, nil
}
