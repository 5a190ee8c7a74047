package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/pipeline"
	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/internal/vision"
	"github.com/your-org/photoflow/pkg/dto"
)

type ProcessHandler struct {
	store    storage.Store
	pipeline *pipeline.Pipeline
}

func NewProcessHandler(store storage.Store, p *pipeline.Pipeline) *ProcessHandler {
	return &ProcessHandler{store: store, pipeline: p}
}

// Process runs the full pipeline for one image and responds when it
// completes. Album-assignment failures come back as a warning on a 200.
func (h *ProcessHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.runPipeline(c, req.ImageURL, req.Pathname)
}

// DetectFaces re-runs the pipeline for an already known image. Safe to
// call repeatedly: the detection set is replaced on each run.
func (h *ProcessHandler) DetectFaces(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}

	img, err := h.store.GetImage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	h.runPipeline(c, img.URL, img.Pathname)
}

func (h *ProcessHandler) runPipeline(c *gin.Context, url, pathname string) {
	result, err := h.pipeline.Process(c.Request.Context(), url, pathname)
	if err != nil {
		var detErr *vision.DetectionError
		if errors.As(err, &detErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": detErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{
		Success:   true,
		ImageID:   result.Image.ID,
		FaceCount: result.FaceCount,
		PeopleIDs: result.PeopleIDs,
		AlbumIDs:  result.AlbumIDs,
		NewPeople: result.NewPeople,
		Warning:   result.Warning,
	})
}
