package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/photoflow/internal/api/handlers"
	"github.com/your-org/photoflow/internal/api/ws"
	"github.com/your-org/photoflow/internal/auth"
	"github.com/your-org/photoflow/internal/jobs"
	"github.com/your-org/photoflow/internal/pipeline"
	"github.com/your-org/photoflow/internal/queue"
	"github.com/your-org/photoflow/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	Objects  *storage.ObjectStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Pipeline *pipeline.Pipeline
	Registry *pipeline.Registry
	Runner   *jobs.Runner
	// EmbedFn extracts a query descriptor from image bytes (from the
	// vision models).
	EmbedFn func(ctx context.Context, imageData []byte) ([]float32, error)
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Objects, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Processing
	processH := handlers.NewProcessHandler(cfg.DB, cfg.Pipeline)
	v1.POST("/process", processH.Process)

	// Images
	imageH := handlers.NewImageHandler(cfg.DB)
	v1.GET("/images", imageH.List)
	v1.GET("/images/:id", imageH.Get)
	v1.PATCH("/images/:id", imageH.Update)
	v1.DELETE("/images/:id", imageH.Delete)
	v1.POST("/images/:id/detect-faces", processH.DetectFaces)

	// People
	peopleH := handlers.NewPeopleHandler(cfg.DB, cfg.Registry)
	peopleH.EmbedFn = cfg.EmbedFn
	v1.GET("/people", peopleH.List)
	v1.GET("/people/:id", peopleH.Get)
	v1.GET("/people/:id/images", peopleH.Images)
	v1.PUT("/people/:id", peopleH.Rename)
	v1.POST("/people/merge", peopleH.Merge)
	v1.POST("/search", peopleH.Search)

	// Albums
	albumH := handlers.NewAlbumHandler(cfg.DB)
	v1.GET("/albums", albumH.List)
	v1.POST("/albums", albumH.Create)
	v1.GET("/albums/:id", albumH.Get)
	v1.PATCH("/albums/:id", albumH.Update)
	v1.DELETE("/albums/:id", albumH.Delete)
	v1.GET("/albums/:id/images", albumH.Images)
	v1.POST("/albums/:id/images/:imageId", albumH.AddImage)
	v1.DELETE("/albums/:id/images/:imageId", albumH.RemoveImage)

	// Gallery sync
	syncH := handlers.NewSyncHandler(cfg.DB, cfg.Runner)
	v1.POST("/sync", syncH.Start)
	v1.GET("/sync/:id", syncH.Get)

	return r
}
