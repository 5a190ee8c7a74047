package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a clustered identity: one real individual across many images.
type Person struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	AvatarURL  string    `json:"avatar_url" db:"avatar_url"`
	ImageCount int       `json:"image_count" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Descriptor is one representative face descriptor of a person, used as a
// matching seed. A person holds at least one.
type Descriptor struct {
	ID            uuid.UUID `json:"id" db:"id"`
	PersonID      uuid.UUID `json:"person_id" db:"person_id"`
	Vector        []float32 `json:"-" db:"descriptor"`
	SourceImageID uuid.UUID `json:"source_image_id" db:"source_image_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FaceDetection is one detected face within one image. Bounding box
// coordinates are fractions of the image dimensions, each in [0,1].
type FaceDetection struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ImageID    uuid.UUID  `json:"image_id" db:"image_id"`
	PersonID   *uuid.UUID `json:"person_id,omitempty" db:"person_id"`
	X          float32    `json:"x" db:"x"`
	Y          float32    `json:"y" db:"y"`
	Width      float32    `json:"width" db:"w"`
	Height     float32    `json:"height" db:"h"`
	Confidence float32    `json:"confidence" db:"confidence"`
	Descriptor []float32  `json:"-" db:"-"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
