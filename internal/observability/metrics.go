package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photoflow",
		Name:      "images_processed_total",
		Help:      "Total number of images run through the pipeline",
	}, []string{"outcome"})

	FacesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoflow",
		Name:      "faces_detected_total",
		Help:      "Total number of faces detected",
	})

	FacesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoflow",
		Name:      "faces_matched_total",
		Help:      "Total number of faces matched to an existing person",
	})

	PersonsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoflow",
		Name:      "persons_created_total",
		Help:      "Total number of new person identities created",
	})

	OrganizerWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoflow",
		Name:      "organizer_warnings_total",
		Help:      "Album assignment failures after successful face resolution",
	})

	PipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photoflow",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photoflow",
		Name:      "queue_depth",
		Help:      "Number of pending process tasks in queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photoflow",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photoflow",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
