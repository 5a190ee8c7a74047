package models

import (
	"time"

	"github.com/google/uuid"
)

type AlbumKind string

const (
	// AlbumKindManual is a user-created album.
	AlbumKindManual AlbumKind = "manual"
	// AlbumKindPerson is an auto-album grouping images of one person.
	// Its key is the person id.
	AlbumKindPerson AlbumKind = "person"
	// AlbumKindMonth is an auto-album grouping faceless images by capture
	// month. Its key is "YYYY-MM".
	AlbumKindMonth AlbumKind = "month"
)

// Album is a named collection of images. Auto-albums (person, month) are
// created by the organizer and identified by (kind, key) so repeated
// processing never creates duplicates.
type Album struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Kind        AlbumKind `json:"kind" db:"kind"`
	Key         string    `json:"key,omitempty" db:"key"`
	CoverImage  string    `json:"cover_image" db:"-"`
	ImageCount  int       `json:"image_count" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
