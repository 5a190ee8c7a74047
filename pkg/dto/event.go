package dto

import (
	"time"

	"github.com/google/uuid"
)

// WSEvent is the envelope broadcast to WebSocket clients when an image
// finishes processing.
type WSEvent struct {
	Type      string      `json:"type"` // "image_processed"
	ImageID   uuid.UUID   `json:"image_id"`
	Pathname  string      `json:"pathname"`
	FaceCount int         `json:"face_count"`
	PeopleIDs []uuid.UUID `json:"people_ids"`
	AlbumIDs  []uuid.UUID `json:"album_ids"`
	NewPeople int         `json:"new_people"`
	Warning   string      `json:"warning,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
