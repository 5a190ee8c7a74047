package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photoflow/internal/config"
	"github.com/your-org/photoflow/internal/pipeline"
	"github.com/your-org/photoflow/internal/storage/memory"
	"github.com/your-org/photoflow/internal/vision"
)

type stubDetector struct {
	faces []vision.Face
	err   error
}

func (d *stubDetector) Detect(ctx context.Context, data []byte) (*vision.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &vision.Result{Width: 800, Height: 600, Format: "jpeg", FileSize: int64(len(data)), Faces: d.faces}, nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, url, pathname string) ([]byte, *time.Time, error) {
	return []byte("image-bytes"), nil, nil
}

type testEnv struct {
	store  *memory.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T, detector vision.FaceDetector) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	registry := pipeline.NewRegistry(store, nil, pipeline.NewMatcher(0.4))
	organizer := pipeline.NewOrganizer(store, config.OrganizerConfig{})
	pipe := pipeline.New(store, stubFetcher{}, detector, registry, organizer, nil)

	r := gin.New()
	v1 := r.Group("/v1")

	processH := NewProcessHandler(store, pipe)
	v1.POST("/process", processH.Process)
	v1.POST("/images/:id/detect-faces", processH.DetectFaces)

	imageH := NewImageHandler(store)
	v1.GET("/images", imageH.List)
	v1.GET("/images/:id", imageH.Get)
	v1.PATCH("/images/:id", imageH.Update)
	v1.DELETE("/images/:id", imageH.Delete)

	peopleH := NewPeopleHandler(store, registry)
	v1.GET("/people", peopleH.List)
	v1.GET("/people/:id", peopleH.Get)
	v1.GET("/people/:id/images", peopleH.Images)
	v1.PUT("/people/:id", peopleH.Rename)
	v1.POST("/people/merge", peopleH.Merge)

	albumH := NewAlbumHandler(store)
	v1.GET("/albums", albumH.List)
	v1.POST("/albums", albumH.Create)
	v1.GET("/albums/:id", albumH.Get)
	v1.PATCH("/albums/:id", albumH.Update)
	v1.DELETE("/albums/:id", albumH.Delete)
	v1.GET("/albums/:id/images", albumH.Images)
	v1.POST("/albums/:id/images/:imageId", albumH.AddImage)
	v1.DELETE("/albums/:id/images/:imageId", albumH.RemoveImage)

	return &testEnv{store: store, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func faceWith(descriptor []float32) vision.Face {
	return vision.Face{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2, Confidence: 0.95, Descriptor: descriptor}
}

func TestProcessEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubDetector{faces: []vision.Face{faceWith([]float32{1, 0, 0, 0})}})

	w := env.do(t, http.MethodPost, "/v1/process", gin.H{
		"image_url": "http://example.com/a.jpg",
		"pathname":  "a.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["face_count"])
	assert.Equal(t, float64(1), resp["new_people"])
}

func TestProcessEndpointMissingPathname(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := env.do(t, http.MethodPost, "/v1/process", gin.H{"image_url": "http://example.com/a.jpg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessEndpointDetectionError(t *testing.T) {
	env := newTestEnv(t, &stubDetector{err: &vision.DetectionError{Reason: "decode image"}})

	w := env.do(t, http.MethodPost, "/v1/process", gin.H{"pathname": "corrupt.jpg"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDetectFacesRerun(t *testing.T) {
	env := newTestEnv(t, &stubDetector{faces: []vision.Face{faceWith([]float32{1, 0, 0, 0})}})

	w := env.do(t, http.MethodPost, "/v1/process", gin.H{"pathname": "a.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	imageID := decode(t, w)["image_id"].(string)

	w = env.do(t, http.MethodPost, "/v1/images/"+imageID+"/detect-faces", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(0), resp["new_people"])
	assert.Equal(t, imageID, resp["image_id"])
}

func TestDetectFacesUnknownImage(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := env.do(t, http.MethodPost, "/v1/images/"+uuid.NewString()+"/detect-faces", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageLifecycle(t *testing.T) {
	env := newTestEnv(t, &stubDetector{faces: []vision.Face{faceWith([]float32{1, 0, 0, 0})}})

	w := env.do(t, http.MethodPost, "/v1/process", gin.H{"pathname": "a.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	imageID := decode(t, w)["image_id"].(string)

	w = env.do(t, http.MethodGet, "/v1/images/"+imageID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	img := resp["image"].(map[string]interface{})
	assert.Equal(t, "a.jpg", img["pathname"])
	assert.Len(t, resp["detections"], 1)

	w = env.do(t, http.MethodPatch, "/v1/images/"+imageID, gin.H{"caption": "Birthday"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Birthday", decode(t, w)["caption"])

	w = env.do(t, http.MethodDelete, "/v1/images/"+imageID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/images/"+imageID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The person lost the image through the cascade.
	w = env.do(t, http.MethodGet, "/v1/people", nil)
	require.Equal(t, http.StatusOK, w.Code)
	people := decode(t, w)["people"].([]interface{})
	require.Len(t, people, 1)
	assert.Equal(t, float64(0), people[0].(map[string]interface{})["image_count"])
}

func TestPeopleRenameAndMerge(t *testing.T) {
	env := newTestEnv(t, &stubDetector{faces: []vision.Face{faceWith([]float32{1, 0, 0, 0})}})

	// Two images with orthogonal faces create two persons.
	w := env.do(t, http.MethodPost, "/v1/process", gin.H{"pathname": "a.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	ctx := context.Background()
	people, err := env.store.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)
	first := people[0].ID

	imgB, err := env.store.UpsertImage(ctx, "", "b.jpg")
	require.NoError(t, err)
	second, err := env.store.CreatePerson(ctx, "Unnamed person", []float32{0, 1, 0, 0}, imgB.ID, "")
	require.NoError(t, err)

	w = env.do(t, http.MethodPut, "/v1/people/"+first.String(), gin.H{"name": "Ada"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode(t, w)["name"])

	w = env.do(t, http.MethodPost, "/v1/people/merge", gin.H{
		"person_ids": []string{first.String(), second.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	merged := decode(t, w)
	assert.Equal(t, first.String(), merged["id"])
	assert.Equal(t, "Ada", merged["name"])
	assert.Equal(t, float64(2), merged["image_count"])

	w = env.do(t, http.MethodGet, "/v1/people/"+second.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMergeRequiresTwoPersons(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := env.do(t, http.MethodPost, "/v1/people/merge", gin.H{
		"person_ids": []string{uuid.NewString()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlbumCRUDAndMembership(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := env.do(t, http.MethodPost, "/v1/albums", gin.H{"name": "Holidays", "description": "Trips"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	albumID := created["id"].(string)
	assert.Equal(t, "manual", created["kind"])

	img, err := env.store.UpsertImage(context.Background(), "", "beach.jpg")
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/v1/albums/%s/images/%s", albumID, img.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/albums/"+albumID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["image_count"])

	w = env.do(t, http.MethodGet, "/v1/albums/"+albumID+"/images", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["images"], 1)

	w = env.do(t, http.MethodPatch, "/v1/albums/"+albumID, gin.H{"name": "Summer"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	assert.Equal(t, "Summer", updated["name"])
	assert.Equal(t, "Trips", updated["description"])

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/v1/albums/%s/images/%s", albumID, img.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/albums/"+albumID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/albums/"+albumID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlbumCreateRequiresName(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := env.do(t, http.MethodPost, "/v1/albums", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
