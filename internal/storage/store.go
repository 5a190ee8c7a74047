package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/models"
)

// ErrNotFound is returned by mutations targeting a missing record. Getters
// return (nil, nil) for absent records instead.
var ErrNotFound = errors.New("not found")

// Candidate is a person as seen by the identity matcher: its representative
// descriptors plus the number of distinct images already associated.
type Candidate struct {
	PersonID    uuid.UUID
	ImageCount  int
	Descriptors [][]float32
}

// PersonMatch is one similarity search result.
type PersonMatch struct {
	Person models.Person
	Score  float32
}

// Store owns all durable person/image/album/job records. PostgresStore is
// the production implementation; memory.Store backs tests.
type Store interface {
	// Persons
	CreatePerson(ctx context.Context, name string, seed []float32, seedImageID uuid.UUID, avatarURL string) (*models.Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context) ([]models.Person, error)
	RenamePerson(ctx context.Context, id uuid.UUID, name string) error
	AddDescriptor(ctx context.Context, personID uuid.UUID, vector []float32, sourceImageID uuid.UUID) error
	ListCandidates(ctx context.Context) ([]Candidate, error)
	MergePersons(ctx context.Context, survivorID uuid.UUID, absorbedIDs []uuid.UUID) (*models.Person, error)
	SearchPersons(ctx context.Context, descriptor []float32, threshold float64, limit int) ([]PersonMatch, error)

	// Images
	UpsertImage(ctx context.Context, url, pathname string) (*models.Image, error)
	GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error)
	GetImageByPathname(ctx context.Context, pathname string) (*models.Image, error)
	ListImages(ctx context.Context) ([]models.Image, error)
	UpdateImageCaption(ctx context.Context, id uuid.UUID, caption string) error
	UpdateImageInfo(ctx context.Context, id uuid.UUID, width, height int, fileSize int64, fileType string, takenAt *time.Time) error
	DeleteImage(ctx context.Context, id uuid.UUID) error
	AssociatePerson(ctx context.Context, imageID, personID uuid.UUID) error
	ListImagePersons(ctx context.Context, imageID uuid.UUID) ([]uuid.UUID, error)
	ListPersonImages(ctx context.Context, personID uuid.UUID) ([]models.Image, error)
	ReplaceDetections(ctx context.Context, imageID uuid.UUID, detections []models.FaceDetection) error
	ListDetections(ctx context.Context, imageID uuid.UUID) ([]models.FaceDetection, error)

	// Albums
	CreateAlbum(ctx context.Context, name, description string) (*models.Album, error)
	EnsureAlbum(ctx context.Context, kind models.AlbumKind, key, name string) (*models.Album, error)
	GetAlbum(ctx context.Context, id uuid.UUID) (*models.Album, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	UpdateAlbum(ctx context.Context, id uuid.UUID, name, description string) error
	DeleteAlbum(ctx context.Context, id uuid.UUID) error
	AddImageToAlbum(ctx context.Context, albumID, imageID uuid.UUID) error
	RemoveImageFromAlbum(ctx context.Context, albumID, imageID uuid.UUID) error
	ListAlbumImages(ctx context.Context, albumID uuid.UUID) ([]models.Image, error)

	// Sync jobs
	CreateJob(ctx context.Context) (*models.SyncJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error)
	UpdateJob(ctx context.Context, job *models.SyncJob) error
}
