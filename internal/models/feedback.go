package models

import "time"

// Feedback is an anonymous rating plus comment tied to a session. It
// deliberately carries no student reference; the only record of who submitted
// lives in SubmissionHistory, which feedback reads never join against.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"feedback"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubmissionHistory marks that a student has submitted feedback for a
// session. Its uniqueness constraint is the sole duplicate-submission gate.
type SubmissionHistory struct {
	SessionID   string    `db:"session_id" json:"session_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// RatingSummary is the aggregate returned by the rating endpoint. TotalRating
// is null when the session has no feedback yet; Count disambiguates an honest
// zero average from the empty set.
type RatingSummary struct {
	TotalRating *float64 `json:"totalRating"`
	Count       int      `json:"count"`
}
