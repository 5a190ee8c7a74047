// Package dto defines the JSON wire shapes of the HTTP API.
package dto

import "github.com/google/uuid"

type PersonResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	ImageCount int       `json:"image_count"`
	CreatedAt  string    `json:"created_at"`
}

type RenamePersonRequest struct {
	Name string `json:"name" binding:"required"`
}

type MergePersonsRequest struct {
	PersonIDs []uuid.UUID `json:"person_ids" binding:"required"`
}

type SearchResult struct {
	PersonID  uuid.UUID `json:"person_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Score     float32   `json:"score"`
}
