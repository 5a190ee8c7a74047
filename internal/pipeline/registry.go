package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/observability"
	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/internal/vision"
)

// defaultPersonName is given to persons created from an unmatched face.
// Users rename them through the people endpoint.
const defaultPersonName = "Unnamed person"

// enrichThreshold: a matched face scoring below this is far enough from
// the person's existing descriptors to be worth keeping as another
// representative, widening future matches.
const enrichThreshold = 0.6

// AvatarWriter stores a new person's face crop. *storage.ObjectStore
// satisfies it; tests pass nil to skip avatar uploads.
type AvatarWriter interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Registry is the single writer of person identity. A registry-wide mutex
// serializes match-or-create so two pipelines seeing the same new face
// cannot both create a person, and faces later in one image match persons
// created by earlier faces of that image.
type Registry struct {
	mu      sync.Mutex
	store   storage.Store
	avatars AvatarWriter
	matcher *Matcher
}

func NewRegistry(store storage.Store, avatars AvatarWriter, matcher *Matcher) *Registry {
	return &Registry{
		store:   store,
		avatars: avatars,
		matcher: matcher,
	}
}

// Resolve matches the face against known persons, creating a new person
// when nothing scores above the threshold, and associates the image with
// the resolved person. Returns the person and whether it was created.
func (r *Registry) Resolve(ctx context.Context, face vision.Face, imageID uuid.UUID) (*models.Person, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates, err := r.store.ListCandidates(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list candidates: %w", err)
	}

	if personID, score, ok := r.matcher.Match(face.Descriptor, candidates); ok {
		if err := r.store.AssociatePerson(ctx, imageID, personID); err != nil {
			return nil, false, fmt.Errorf("associate person: %w", err)
		}
		person, err := r.store.GetPerson(ctx, personID)
		if err != nil {
			return nil, false, fmt.Errorf("get person: %w", err)
		}
		if score < enrichThreshold {
			if err := r.store.AddDescriptor(ctx, personID, face.Descriptor, imageID); err != nil {
				slog.Warn("add descriptor", "person", personID, "error", err)
			}
		}
		observability.FacesMatched.Inc()
		slog.Debug("face matched", "person", personID, "score", score)
		return person, false, nil
	}

	avatarURL := r.uploadAvatar(ctx, face.Snapshot)
	person, err := r.store.CreatePerson(ctx, defaultPersonName, face.Descriptor, imageID, avatarURL)
	if err != nil {
		return nil, false, fmt.Errorf("create person: %w", err)
	}
	observability.PersonsCreated.Inc()
	slog.Info("person created", "person", person.ID, "image", imageID)
	return person, true, nil
}

// uploadAvatar stores the face crop and returns its key. Failures only
// cost the avatar, never the person.
func (r *Registry) uploadAvatar(ctx context.Context, snapshot []byte) string {
	if r.avatars == nil || len(snapshot) == 0 {
		return ""
	}
	key := fmt.Sprintf("avatars/%s.jpg", uuid.NewString())
	if err := r.avatars.PutObject(ctx, key, snapshot, "image/jpeg"); err != nil {
		slog.Warn("upload avatar", "error", err)
		return ""
	}
	return key
}

// Associate links an image to a person. Idempotent.
func (r *Registry) Associate(ctx context.Context, imageID, personID uuid.UUID) error {
	return r.store.AssociatePerson(ctx, imageID, personID)
}

// Rename updates a person's display name.
func (r *Registry) Rename(ctx context.Context, personID uuid.UUID, name string) error {
	return r.store.RenamePerson(ctx, personID, name)
}

// Merge folds the persons into the first id: the survivor keeps its name
// and gains the union of image associations, detections and descriptors;
// the others are deleted. Fewer than two distinct ids is rejected with
// ErrInsufficientSelection before anything is touched.
func (r *Registry) Merge(ctx context.Context, personIDs []uuid.UUID) (*models.Person, error) {
	distinct := make([]uuid.UUID, 0, len(personIDs))
	seen := make(map[uuid.UUID]struct{}, len(personIDs))
	for _, id := range personIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) < 2 {
		return nil, ErrInsufficientSelection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.MergePersons(ctx, distinct[0], distinct[1:])
}
