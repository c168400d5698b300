package models

import "time"

// Enrollment records that a student joined a session. The
// (session_id, student_id) pair is unique at the database level so a race
// between two join attempts resolves to one success and one conflict.
type Enrollment struct {
	SessionID string    `db:"session_id" json:"session_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}
