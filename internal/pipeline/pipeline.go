package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/observability"
	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/internal/vision"
)

// EventPublisher emits processed-image events. *queue.Producer satisfies
// it; tests pass nil to skip publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, data interface{}) error
}

// Result is the outcome of one image's pipeline run.
type Result struct {
	Image     *models.Image
	FaceCount int
	PeopleIDs []uuid.UUID
	AlbumIDs  []uuid.UUID
	NewPeople int
	// Warning is set when album assignment failed after the person
	// associations were committed.
	Warning string
}

// Pipeline runs the full flow for one image: upsert record → detect faces
// → resolve identities → persist detections → organize into albums →
// publish event. Distinct images may run concurrently; faces within one
// image run sequentially so same-image faces cluster correctly.
type Pipeline struct {
	store     storage.Store
	fetcher   Fetcher
	detector  vision.FaceDetector
	registry  *Registry
	organizer *Organizer
	publisher EventPublisher
}

func New(
	store storage.Store,
	fetcher Fetcher,
	detector vision.FaceDetector,
	registry *Registry,
	organizer *Organizer,
	publisher EventPublisher,
) *Pipeline {
	return &Pipeline{
		store:     store,
		fetcher:   fetcher,
		detector:  detector,
		registry:  registry,
		organizer: organizer,
		publisher: publisher,
	}
}

// Process handles one image identified by url and pathname. Re-running the
// same image is idempotent: the image record is keyed by pathname, the
// detection set is replaced, and associations and album memberships are
// keyed upserts. A *vision.DetectionError in the returned error marks a
// skippable image; an album-assignment failure is reported through
// Result.Warning, never as an error.
func (p *Pipeline) Process(ctx context.Context, url, pathname string) (*Result, error) {
	start := time.Now()

	data, takenAt, err := p.fetcher.Fetch(ctx, url, pathname)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	img, err := p.store.UpsertImage(ctx, url, pathname)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upsert image: %w", err)
	}

	detected, err := p.detector.Detect(ctx, data)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("detection_error").Inc()
		return nil, err
	}

	if err := p.store.UpdateImageInfo(ctx, img.ID, detected.Width, detected.Height,
		detected.FileSize, detected.Format, takenAt); err != nil {
		observability.ImagesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("update image info: %w", err)
	}
	img.Width = detected.Width
	img.Height = detected.Height
	img.FileSize = detected.FileSize
	img.FileType = detected.Format
	if takenAt != nil {
		img.TakenAt = takenAt
	}

	result := &Result{
		Image:     img,
		FaceCount: len(detected.Faces),
	}

	// Faces run sequentially: a person created by the first face must be
	// visible as a match candidate to the rest.
	detections := make([]models.FaceDetection, 0, len(detected.Faces))
	seenPeople := make(map[uuid.UUID]struct{})
	for _, face := range detected.Faces {
		person, created, err := p.registry.Resolve(ctx, face, img.ID)
		if err != nil {
			observability.ImagesProcessed.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("resolve face: %w", err)
		}
		if created {
			result.NewPeople++
		}
		if _, ok := seenPeople[person.ID]; !ok {
			seenPeople[person.ID] = struct{}{}
			result.PeopleIDs = append(result.PeopleIDs, person.ID)
		}

		personID := person.ID
		detections = append(detections, models.FaceDetection{
			ImageID:    img.ID,
			PersonID:   &personID,
			X:          face.X,
			Y:          face.Y,
			Width:      face.Width,
			Height:     face.Height,
			Confidence: face.Confidence,
		})
	}

	if err := p.store.ReplaceDetections(ctx, img.ID, detections); err != nil {
		observability.ImagesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("persist detections: %w", err)
	}

	albumIDs, err := p.organizer.Organize(ctx, img, result.PeopleIDs)
	result.AlbumIDs = albumIDs
	if err != nil {
		warning := &OrganizerWarning{Err: err}
		result.Warning = warning.Error()
		observability.OrganizerWarnings.Inc()
		slog.Warn("organize image", "image", img.ID, "error", err)
	}

	p.publish(ctx, result)

	observability.ImagesProcessed.WithLabelValues("ok").Inc()
	observability.PipelineStageDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())

	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, result *Result) {
	if p.publisher == nil {
		return
	}

	event := models.ProcessedEvent{
		ImageID:   result.Image.ID,
		Pathname:  result.Image.Pathname,
		FaceCount: result.FaceCount,
		PeopleIDs: result.PeopleIDs,
		AlbumIDs:  result.AlbumIDs,
		NewPeople: result.NewPeople,
		Warning:   result.Warning,
		Timestamp: time.Now().UTC(),
	}
	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		slog.Error("publish processed event", "image", result.Image.ID, "error", err)
	}
}
