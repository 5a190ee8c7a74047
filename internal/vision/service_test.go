package vision

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionGuard counts overlapping entries into the fake model sessions.
// The real sessions reuse preallocated tensors, so any overlap corrupts a
// run in flight.
type sessionGuard struct {
	active   atomic.Int32
	overlaps atomic.Int32
}

func (g *sessionGuard) enter() func() {
	if g.active.Add(1) > 1 {
		g.overlaps.Add(1)
	}
	time.Sleep(time.Millisecond)
	return func() { g.active.Add(-1) }
}

type fakeDetectModel struct {
	guard *sessionGuard
	faces []detection
}

func (m *fakeDetectModel) inputSize() (int, int) { return 64, 64 }

func (m *fakeDetectModel) detect(_ []float32, origW, origH int) ([]detection, error) {
	defer m.guard.enter()()
	return m.faces, nil
}

func (m *fakeDetectModel) close() {}

type fakeEmbedModel struct {
	guard      *sessionGuard
	descriptor []float32
}

func (m *fakeEmbedModel) inputSize() (int, int) { return 16, 16 }

func (m *fakeEmbedModel) extract(_ []float32) ([]float32, error) {
	defer m.guard.enter()()
	return m.descriptor, nil
}

func (m *fakeEmbedModel) close() {}

func testJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return encodeJPEG(img, 85)
}

func TestDetectSerializesModelRuns(t *testing.T) {
	guard := &sessionGuard{}
	svc := &Service{
		detector: &fakeDetectModel{
			guard: guard,
			faces: []detection{{bbox: [4]float32{10, 10, 50, 50}, confidence: 0.9}},
		},
		embedder: &fakeEmbedModel{guard: guard, descriptor: []float32{1, 0, 0, 0}},
	}

	data := testJPEG(80, 80)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Detect(context.Background(), data)
			assert.NoError(t, err)
			if err == nil {
				assert.Len(t, result.Faces, 1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, guard.overlaps.Load(), "model sessions entered concurrently")
}

func TestDetectNormalizesCoordinates(t *testing.T) {
	svc := &Service{
		detector: &fakeDetectModel{
			guard: &sessionGuard{},
			faces: []detection{{bbox: [4]float32{20, 10, 60, 50}, confidence: 0.8}},
		},
		embedder: &fakeEmbedModel{guard: &sessionGuard{}, descriptor: []float32{0, 1, 0, 0}},
	}

	result, err := svc.Detect(context.Background(), testJPEG(80, 40))
	require.NoError(t, err)
	assert.Equal(t, 80, result.Width)
	assert.Equal(t, 40, result.Height)
	assert.Equal(t, "jpeg", result.Format)
	require.Len(t, result.Faces, 1)

	face := result.Faces[0]
	assert.InDelta(t, 0.25, face.X, 1e-6)
	assert.InDelta(t, 0.25, face.Y, 1e-6)
	assert.InDelta(t, 0.5, face.Width, 1e-6)
	assert.InDelta(t, 1.0, face.Height, 1e-6)
	assert.Equal(t, []float32{0, 1, 0, 0}, face.Descriptor)
	assert.NotEmpty(t, face.Snapshot)
}

func TestDetectRejectsGarbage(t *testing.T) {
	svc := &Service{
		detector: &fakeDetectModel{guard: &sessionGuard{}},
		embedder: &fakeEmbedModel{guard: &sessionGuard{}},
	}

	_, err := svc.Detect(context.Background(), []byte("not an image"))
	var detErr *DetectionError
	require.ErrorAs(t, err, &detErr)
	assert.Equal(t, "decode image", detErr.Reason)
}
