package models

import "time"

// Teacher represents a teacher account stored in the teachers table.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile returns the public view of a teacher, never carrying credentials.
func (t Teacher) Profile() UserInfo {
	return UserInfo{ID: t.ID, Name: t.Name, Email: t.Email}
}
