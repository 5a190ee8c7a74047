package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/storage"
	"github.com/your-org/photoflow/pkg/dto"
)

type AlbumHandler struct {
	store storage.Store
}

func NewAlbumHandler(store storage.Store) *AlbumHandler {
	return &AlbumHandler{store: store}
}

func (h *AlbumHandler) List(c *gin.Context) {
	albums, err := h.store.ListAlbums(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AlbumResponse, 0, len(albums))
	for i := range albums {
		resp = append(resp, toAlbumResponse(&albums[i]))
	}

	c.JSON(http.StatusOK, gin.H{"albums": resp, "total": len(resp)})
}

func (h *AlbumHandler) Create(c *gin.Context) {
	var req dto.CreateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	album, err := h.store.CreateAlbum(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toAlbumResponse(album))
}

func (h *AlbumHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	album, err := h.store.GetAlbum(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if album == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		return
	}

	c.JSON(http.StatusOK, toAlbumResponse(album))
}

func (h *AlbumHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	var req dto.UpdateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	album, err := h.store.GetAlbum(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if album == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		return
	}

	name := album.Name
	description := album.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}

	if err := h.store.UpdateAlbum(c.Request.Context(), id, name, description); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	album.Name = name
	album.Description = description
	c.JSON(http.StatusOK, toAlbumResponse(album))
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	if err := h.store.DeleteAlbum(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AlbumHandler) Images(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	album, err := h.store.GetAlbum(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if album == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		return
	}

	images, err := h.store.ListAlbumImages(c.Request.Context(), id)
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

func (h *AlbumHandler) AddImage(c *gin.Context) {
	albumID, imageID, ok := h.albumImageIDs(c)
	if !ok {
		return
	}

	if err := h.store.AddImageToAlbum(c.Request.Context(), albumID, imageID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album or image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

func (h *AlbumHandler) RemoveImage(c *gin.Context) {
	albumID, imageID, ok := h.albumImageIDs(c)
	if !ok {
		return
	}

	if err := h.store.RemoveImageFromAlbum(c.Request.Context(), albumID, imageID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album or image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *AlbumHandler) albumImageIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return uuid.Nil, uuid.Nil, false
	}
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return uuid.Nil, uuid.Nil, false
	}
	return albumID, imageID, true
}
