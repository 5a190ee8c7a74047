package dto

import "github.com/google/uuid"

type ImageResponse struct {
	ID        uuid.UUID   `json:"id"`
	URL       string      `json:"url"`
	Pathname  string      `json:"pathname"`
	Caption   string      `json:"caption"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	FileSize  int64       `json:"file_size"`
	FileType  string      `json:"file_type"`
	TakenAt   string      `json:"taken_at,omitempty"`
	CreatedAt string      `json:"created_at"`
	PeopleIDs []uuid.UUID `json:"people_ids"`
	AlbumIDs  []uuid.UUID `json:"album_ids"`
}

type UpdateImageRequest struct {
	Caption *string `json:"caption" binding:"required"`
}

type ProcessRequest struct {
	ImageURL string `json:"image_url"`
	Pathname string `json:"pathname" binding:"required"`
}

type ProcessResponse struct {
	Success   bool        `json:"success"`
	ImageID   uuid.UUID   `json:"image_id"`
	FaceCount int         `json:"face_count"`
	PeopleIDs []uuid.UUID `json:"people_ids"`
	AlbumIDs  []uuid.UUID `json:"album_ids"`
	NewPeople int         `json:"new_people"`
	Warning   string      `json:"warning,omitempty"`
}

type DetectionResponse struct {
	ID         uuid.UUID  `json:"id"`
	PersonID   *uuid.UUID `json:"person_id,omitempty"`
	X          float32    `json:"x"`
	Y          float32    `json:"y"`
	Width      float32    `json:"width"`
	Height     float32    `json:"height"`
	Confidence float32    `json:"confidence"`
}
