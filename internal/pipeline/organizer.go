package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/config"
	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/storage"
)

// Organizer assigns a processed image to auto-albums: one album per
// resolved person, and a month album for faceless images with a known
// capture time. Every write is a keyed upsert, so re-running an image
// never duplicates albums or memberships.
type Organizer struct {
	store storage.Store
	cfg   config.OrganizerConfig
}

func NewOrganizer(store storage.Store, cfg config.OrganizerConfig) *Organizer {
	return &Organizer{store: store, cfg: cfg}
}

// Organize returns the ids of every album the image now belongs to. A
// partial failure returns the albums assigned so far together with the
// error; the caller surfaces it as a warning, not a rollback.
func (o *Organizer) Organize(ctx context.Context, img *models.Image, personIDs []uuid.UUID) ([]uuid.UUID, error) {
	var albumIDs []uuid.UUID

	if !o.cfg.DisablePersonAlbums {
		for _, personID := range personIDs {
			person, err := o.store.GetPerson(ctx, personID)
			if err != nil {
				return albumIDs, fmt.Errorf("load person %s: %w", personID, err)
			}
			if person == nil {
				continue
			}

			album, err := o.store.EnsureAlbum(ctx, models.AlbumKindPerson, personID.String(), person.Name)
			if err != nil {
				return albumIDs, fmt.Errorf("ensure person album: %w", err)
			}
			if err := o.store.AddImageToAlbum(ctx, album.ID, img.ID); err != nil {
				return albumIDs, fmt.Errorf("add to person album: %w", err)
			}
			albumIDs = append(albumIDs, album.ID)
		}
	}

	if len(personIDs) == 0 && img.TakenAt != nil && !o.cfg.DisableMonthAlbums {
		key := img.TakenAt.Format("2006-01")
		name := img.TakenAt.Format("January 2006")

		album, err := o.store.EnsureAlbum(ctx, models.AlbumKindMonth, key, name)
		if err != nil {
			return albumIDs, fmt.Errorf("ensure month album: %w", err)
		}
		if err := o.store.AddImageToAlbum(ctx, album.ID, img.ID); err != nil {
			return albumIDs, fmt.Errorf("add to month album: %w", err)
		}
		albumIDs = append(albumIDs, album.ID)
	}

	return albumIDs, nil
}
