package dto

import "github.com/google/uuid"

type AlbumResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	CoverImage  string    `json:"cover_image"`
	ImageCount  int       `json:"image_count"`
	CreatedAt   string    `json:"created_at"`
}

type CreateAlbumRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateAlbumRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
