package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/jobs"
	"github.com/your-org/photoflow/internal/storage"
)

type SyncHandler struct {
	store  storage.Store
	runner *jobs.Runner
}

func NewSyncHandler(store storage.Store, runner *jobs.Runner) *SyncHandler {
	return &SyncHandler{store: store, runner: runner}
}

// Start kicks off a gallery sync job and returns its id immediately.
func (h *SyncHandler) Start(c *gin.Context) {
	job, err := h.runner.Start(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": job.Status})
}

func (h *SyncHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}
