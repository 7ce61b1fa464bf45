package models

import "time"

// Submission outcomes as recorded in the journal.
const (
	SubmissionAccepted       = "accepted"
	SubmissionPartial        = "partial"
	SubmissionTransportError = "transport_error"
)

// SubmissionRecord is one journaled submit-all attempt.
type SubmissionRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	CustomerID int64     `json:"customer_id"`
	GroupCount int       `json:"group_count"`
	Accepted   int       `json:"accepted"`
	Failed     int       `json:"failed"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
