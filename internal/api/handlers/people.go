package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/pipeline"
	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/pkg/dto"
)

type PeopleHandler struct {
	store    storage.Store
	registry *pipeline.Registry
	// EmbedFn extracts a query descriptor from image bytes. Set after the
	// vision models are loaded.
	EmbedFn func(ctx context.Context, imageData []byte) ([]float32, error)
}

func NewPeopleHandler(store storage.Store, registry *pipeline.Registry) *PeopleHandler {
	return &PeopleHandler{store: store, registry: registry}
}

func (h *PeopleHandler) List(c *gin.Context) {
	people, err := h.store.ListPersons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.PersonResponse, 0, len(people))
	for i := range people {
		resp = append(resp, toPersonResponse(&people[i]))
	}

	c.JSON(http.StatusOK, gin.H{"people": resp, "total": len(resp)})
}

func (h *PeopleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.store.GetPerson(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	c.JSON(http.StatusOK, toPersonResponse(person))
}

func (h *PeopleHandler) Images(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.store.GetPerson(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	images, err := h.store.ListPersonImages(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.ImageResponse, 0, len(images))
	for i := range images {
		resp = append(resp, toImageResponse(&images[i]))
	}

	c.JSON(http.StatusOK, gin.H{"images": resp, "total": len(resp)})
}

func (h *PeopleHandler) Rename(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	var req dto.RenamePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Rename(c.Request.Context(), id, req.Name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	person, err := h.store.GetPerson(c.Request.Context(), id)
	if err != nil || person == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload person failed"})
		return
	}

	c.JSON(http.StatusOK, toPersonResponse(person))
}

// Merge folds two or more persons into the first. The survivor keeps its
// name and gains every image of the others.
func (h *PeopleHandler) Merge(c *gin.Context) {
	var req dto.MergePersonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	survivor, err := h.registry.Merge(c.Request.Context(), req.PersonIDs)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInsufficientSelection):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toPersonResponse(survivor))
}

// Search finds persons similar to the face in an uploaded image.
func (h *PeopleHandler) Search(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	if h.EmbedFn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vision models not initialized"})
		return
	}

	descriptor, err := h.EmbedFn(c.Request.Context(), imageData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to extract face: " + err.Error()})
		return
	}

	matches, err := h.store.SearchPersons(c.Request.Context(), descriptor, 0.4, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := make([]dto.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, dto.SearchResult{
			PersonID:  m.Person.ID,
			Name:      m.Person.Name,
			AvatarURL: m.Person.AvatarURL,
			Score:     m.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}
