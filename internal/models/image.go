package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is an uploaded photo. The record is created before face processing;
// people and album associations are appended by the pipeline afterwards.
type Image struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	URL       string     `json:"url" db:"url"`
	Pathname  string     `json:"pathname" db:"pathname"`
	Caption   string     `json:"caption" db:"caption"`
	Width     int        `json:"width" db:"width"`
	Height    int        `json:"height" db:"height"`
	FileSize  int64      `json:"file_size" db:"file_size"`
	FileType  string     `json:"file_type" db:"file_type"`
	TakenAt   *time.Time `json:"taken_at,omitempty" db:"taken_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	PeopleIDs []uuid.UUID `json:"people_ids" db:"-"`
	AlbumIDs  []uuid.UUID `json:"album_ids" db:"-"`
}
