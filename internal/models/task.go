package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessTask is the message published to NATS for worker processing.
type ProcessTask struct {
	ImageURL string     `json:"image_url"`
	Pathname string     `json:"pathname"`
	JobID    *uuid.UUID `json:"job_id,omitempty"` // set when enqueued by a sync job
}

// ProcessedEvent is published after one image's pipeline run completes.
type ProcessedEvent struct {
	ImageID   uuid.UUID   `json:"image_id"`
	Pathname  string      `json:"pathname"`
	FaceCount int         `json:"face_count"`
	PeopleIDs []uuid.UUID `json:"people_ids"`
	AlbumIDs  []uuid.UUID `json:"album_ids"`
	NewPeople int         `json:"new_people"`
	Warning   string      `json:"warning,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
