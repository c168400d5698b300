package models

import "time"

// Student represents a student account stored in the students table.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile returns the public view of a student.
func (s Student) Profile() UserInfo {
	return UserInfo{ID: s.ID, Name: s.Name, Email: s.Email}
}

// StudentProfile is the public projection returned by gap reports. It maps
// directly onto roster queries so the password hash never leaves the
// repository layer.
type StudentProfile struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
