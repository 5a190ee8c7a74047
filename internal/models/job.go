package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// SyncJob is one gallery synchronization run. Each run is its own durable
// record keyed by id; status moves pending → running → completed|failed.
type SyncJob struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Status     JobStatus  `json:"status" db:"status"`
	Progress   int        `json:"progress" db:"progress"` // 0-100
	ImageCount int        `json:"image_count" db:"image_count"`
	Error      string     `json:"error,omitempty" db:"error"`
	StartedAt  *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
