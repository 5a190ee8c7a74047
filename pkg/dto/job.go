package dto

import "github.com/google/uuid"

type JobResponse struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	ImageCount int       `json:"image_count"`
	Error      string    `json:"error,omitempty"`
	StartedAt  string    `json:"started_at,omitempty"`
	FinishedAt string    `json:"finished_at,omitempty"`
	CreatedAt  string    `json:"created_at"`
}
