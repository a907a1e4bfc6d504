package store

import (
	"fmt"
	"time"
)

// ApplicationStatus is the state of one tracked application. Transitions are
// simple linear status replacement.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

var validStatuses = map[ApplicationStatus]struct{}{
	StatusPending:   {},
	StatusApplied:   {},
	StatusInterview: {},
	StatusOffer:     {},
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusWithdrawn: {},
}

// Validate rejects unknown status values.
func (s ApplicationStatus) Validate() error {
	if _, ok := validStatuses[s]; !ok {
		return fmt.Errorf("unknown application status %q", s)
	}
	return nil
}

// Application tracks one job application.
type Application struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	JobID     string            `json:"job_id"`
	JobTitle  string            `json:"job_title"`
	Company   string            `json:"company"`
	Status    ApplicationStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	AppliedAt time.Time         `json:"applied_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SavedMatch is one persisted row of a ranked search result.
type SavedMatch struct {
	ID           int64     `json:"id"`
	JobID        string    `json:"job_id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Source       string    `json:"source"`
	URL          string    `json:"url"`
	OverallScore float64   `json:"overall_score"`
	Payload      string    `json:"payload"`
	CreatedAt    time.Time `json:"created_at"`
}
