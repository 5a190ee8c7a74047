package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/pkg/dto"
)

type ImageHandler struct {
	store storage.Store
}

func NewImageHandler(store storage.Store) *ImageHandler {
	return &ImageHandler{store: store}
}

func (h *ImageHandler) List(c *gin.Context) {
	images, err := h.store.ListImages(c.Request.Context())
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

func (h *ImageHandler) Get(c *gin.Context) {
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

	detections, err := h.store.ListDetections(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	detResp := make([]dto.DetectionResponse, 0, len(detections))
	for _, d := range detections {
		detResp = append(detResp, dto.DetectionResponse{
			ID:         d.ID,
			PersonID:   d.PersonID,
			X:          d.X,
			Y:          d.Y,
			Width:      d.Width,
			Height:     d.Height,
			Confidence: d.Confidence,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"image":      toImageResponse(img),
		"detections": detResp,
	})
}

func (h *ImageHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}

	var req dto.UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateImageCaption(c.Request.Context(), id, *req.Caption); err != nil {
		if err == storage.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	img, err := h.store.GetImage(c.Request.Context(), id)
	if err != nil || img == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload image failed"})
		return
	}

	c.JSON(http.StatusOK, toImageResponse(img))
}

// Delete removes the image and, through cascades, its detections, person
// associations and album memberships.
func (h *ImageHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}

	if err := h.store.DeleteImage(c.Request.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
