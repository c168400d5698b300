package models

import "time"

// Session is a single feedback-collection event created by a teacher for a
// given date. Sessions are immutable once created.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
