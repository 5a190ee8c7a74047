package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photoflow/internal/config"
	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/internal/storage/memory"
	"github.com/your-org/photoflow/internal/vision"
)

// stubDetector returns canned faces per pathname-independent call.
type stubDetector struct {
	faces []vision.Face
	err   error
}

func (d *stubDetector) Detect(ctx context.Context, data []byte) (*vision.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &vision.Result{
		Width:    800,
		Height:   600,
		Format:   "jpeg",
		FileSize: int64(len(data)),
		Faces:    d.faces,
	}, nil
}

type stubFetcher struct {
	takenAt *time.Time
}

func (f *stubFetcher) Fetch(ctx context.Context, url, pathname string) ([]byte, *time.Time, error) {
	return []byte("image-bytes"), f.takenAt, nil
}

type capturingPublisher struct {
	events []models.ProcessedEvent
}

func (p *capturingPublisher) PublishEvent(ctx context.Context, data interface{}) error {
	p.events = append(p.events, data.(models.ProcessedEvent))
	return nil
}

func newTestPipeline(store storage.Store, detector vision.FaceDetector, pub EventPublisher) *Pipeline {
	registry := NewRegistry(store, nil, NewMatcher(0.4))
	organizer := NewOrganizer(store, config.OrganizerConfig{})
	return New(store, &stubFetcher{}, detector, registry, organizer, pub)
}

func TestProcessNewPerson(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pub := &capturingPublisher{}
	detector := &stubDetector{faces: []vision.Face{testFace([]float32{1, 0, 0, 0})}}
	pipe := newTestPipeline(store, detector, pub)

	result, err := pipe.Process(ctx, "http://example.com/a.jpg", "a.jpg")
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 1, result.FaceCount)
	assert.Equal(t, 1, result.NewPeople)
	require.Len(t, result.PeopleIDs, 1)
	require.Len(t, result.AlbumIDs, 1)

	// Detections carry the resolved person.
	dets, err := store.ListDetections(ctx, result.Image.ID)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	require.NotNil(t, dets[0].PersonID)
	assert.Equal(t, result.PeopleIDs[0], *dets[0].PersonID)

	// The person album holds the image.
	album, err := store.GetAlbum(ctx, result.AlbumIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlbumKindPerson, album.Kind)
	assert.Equal(t, 1, album.ImageCount)

	// An event went out.
	require.Len(t, pub.events, 1)
	assert.Equal(t, result.Image.ID, pub.events[0].ImageID)
	assert.Equal(t, 1, pub.events[0].NewPeople)
}

func TestProcessMatchesExistingPerson(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	detector := &stubDetector{faces: []vision.Face{testFace([]float32{1, 0, 0, 0})}}
	pipe := newTestPipeline(store, detector, nil)

	// Seed one person across five images.
	seed, err := store.UpsertImage(ctx, "", "seed.jpg")
	require.NoError(t, err)
	person, err := store.CreatePerson(ctx, "Ada", []float32{1, 0, 0, 0}, seed.ID, "")
	require.NoError(t, err)
	for _, name := range []string{"s2.jpg", "s3.jpg", "s4.jpg", "s5.jpg"} {
		img, err := store.UpsertImage(ctx, "", name)
		require.NoError(t, err)
		require.NoError(t, store.AssociatePerson(ctx, img.ID, person.ID))
	}

	result, err := pipe.Process(ctx, "", "sixth.jpg")
	require.NoError(t, err)
	assert.Equal(t, 0, result.NewPeople)
	require.Len(t, result.PeopleIDs, 1)
	assert.Equal(t, person.ID, result.PeopleIDs[0])

	got, err := store.GetPerson(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.ImageCount)
}

func TestProcessNoFaces(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pipe := newTestPipeline(store, &stubDetector{}, nil)

	result, err := pipe.Process(ctx, "", "empty.jpg")
	require.NoError(t, err)
	assert.Equal(t, 0, result.FaceCount)
	assert.Empty(t, result.PeopleIDs)

	people, err := store.ListPersons(ctx)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestProcessMonthAlbumForFacelessImage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	taken := time.Date(2023, time.December, 24, 12, 0, 0, 0, time.UTC)

	registry := NewRegistry(store, nil, NewMatcher(0.4))
	organizer := NewOrganizer(store, config.OrganizerConfig{})
	pipe := New(store, &stubFetcher{takenAt: &taken}, &stubDetector{}, registry, organizer, nil)

	result, err := pipe.Process(ctx, "", "landscape.jpg")
	require.NoError(t, err)
	require.Len(t, result.AlbumIDs, 1)

	album, err := store.GetAlbum(ctx, result.AlbumIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlbumKindMonth, album.Kind)
	assert.Equal(t, "2023-12", album.Key)
}

func TestProcessDetectionError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	detErr := &vision.DetectionError{Reason: "decode image", Err: errors.New("bad jpeg")}
	pipe := newTestPipeline(store, &stubDetector{err: detErr}, nil)

	_, err := pipe.Process(ctx, "", "corrupt.jpg")
	require.Error(t, err)

	var de *vision.DetectionError
	assert.ErrorAs(t, err, &de)
}

func TestProcessIdempotentRerun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	detector := &stubDetector{faces: []vision.Face{testFace([]float32{1, 0, 0, 0})}}
	pipe := newTestPipeline(store, detector, nil)

	first, err := pipe.Process(ctx, "", "a.jpg")
	require.NoError(t, err)
	second, err := pipe.Process(ctx, "", "a.jpg")
	require.NoError(t, err)

	// Same image record, same person, no growth anywhere.
	assert.Equal(t, first.Image.ID, second.Image.ID)
	assert.Equal(t, first.PeopleIDs, second.PeopleIDs)
	assert.Equal(t, 0, second.NewPeople)

	images, err := store.ListImages(ctx)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	people, err := store.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, 1, people[0].ImageCount)

	dets, err := store.ListDetections(ctx, first.Image.ID)
	require.NoError(t, err)
	assert.Len(t, dets, 1)

	albums, err := store.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, 1, albums[0].ImageCount)
}

// failingAlbumStore breaks album writes to exercise the partial-failure
// path after associations are committed.
type failingAlbumStore struct {
	storage.Store
}

func (s *failingAlbumStore) EnsureAlbum(ctx context.Context, kind models.AlbumKind, key, name string) (*models.Album, error) {
	return nil, errors.New("albums unavailable")
}

func TestProcessOrganizerFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	store := &failingAlbumStore{Store: memory.New()}
	detector := &stubDetector{faces: []vision.Face{testFace([]float32{1, 0, 0, 0})}}
	pub := &capturingPublisher{}
	pipe := newTestPipeline(store, detector, pub)

	result, err := pipe.Process(ctx, "", "a.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.Empty(t, result.AlbumIDs)

	// Person association survived the album failure.
	require.Len(t, result.PeopleIDs, 1)
	person, err := store.GetPerson(ctx, result.PeopleIDs[0])
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, 1, person.ImageCount)

	// The event still fires, carrying the warning.
	require.Len(t, pub.events, 1)
	assert.NotEmpty(t, pub.events[0].Warning)
}

func TestProcessMultipleDistinctFaces(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	detector := &stubDetector{faces: []vision.Face{
		testFace([]float32{1, 0, 0, 0}),
		testFace([]float32{0, 1, 0, 0}),
	}}
	pipe := newTestPipeline(store, detector, nil)

	result, err := pipe.Process(ctx, "", "duo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, result.FaceCount)
	assert.Equal(t, 2, result.NewPeople)
	assert.Len(t, result.PeopleIDs, 2)
	assert.Len(t, result.AlbumIDs, 2)
}
