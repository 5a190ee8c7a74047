package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/storage"
)

// TaskPublisher enqueues process tasks. *queue.Producer satisfies it.
type TaskPublisher interface {
	PublishTask(ctx context.Context, data interface{}) error
}

// GalleryLister enumerates image keys under a prefix. *storage.ObjectStore
// satisfies it.
type GalleryLister interface {
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// Runner drives gallery sync jobs: it lists the bucket and enqueues a
// process task per image. Each run is a durable sync_jobs record, so
// multiple syncs can overlap and clients poll by job id instead of a
// shared status.
type Runner struct {
	store    storage.Store
	objects  GalleryLister
	producer TaskPublisher
	prefix   string
	enqueue  int // concurrent publishers per job
}

func NewRunner(store storage.Store, objects GalleryLister, producer TaskPublisher, prefix string) *Runner {
	return &Runner{
		store:    store,
		objects:  objects,
		producer: producer,
		prefix:   prefix,
		enqueue:  8,
	}
}

// Start creates a job record and kicks off the sync in the background.
// The returned job is in pending state; poll GetJob for progress.
func (r *Runner) Start(ctx context.Context) (*models.SyncJob, error) {
	job, err := r.store.CreateJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}

	go func() {
		// Detached from the request context: the job outlives the
		// HTTP call that started it.
		runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := r.run(runCtx, job); err != nil {
			slog.Error("sync job failed", "job", job.ID, "error", err)
			r.finish(runCtx, job, models.JobStatusFailed, err.Error())
			return
		}
		r.finish(runCtx, job, models.JobStatusCompleted, "")
	}()

	return job, nil
}

func (r *Runner) run(ctx context.Context, job *models.SyncJob) error {
	now := time.Now().UTC()
	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	keys, err := r.objects.ListObjects(ctx, r.prefix)
	if err != nil {
		return fmt.Errorf("list gallery: %w", err)
	}

	job.ImageCount = len(keys)
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("record image count: %w", err)
	}

	slog.Info("sync job listing done", "job", job.ID, "images", len(keys))
	if len(keys) == 0 {
		job.Progress = 100
		return nil
	}

	var done atomic.Int64
	jobID := job.ID

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.enqueue)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			task := models.ProcessTask{
				Pathname: key,
				JobID:    &jobID,
			}
			if err := r.producer.PublishTask(gctx, task); err != nil {
				return fmt.Errorf("enqueue %s: %w", key, err)
			}

			n := done.Add(1)
			// Progress is checkpointed every 10 images to keep job
			// writes off the hot path. Each checkpoint writes its own
			// copy so publishers never share the job struct.
			if n%10 == 0 || n == int64(len(keys)) {
				checkpoint := *job
				checkpoint.Progress = int(n * 100 / int64(len(keys)))
				if err := r.store.UpdateJob(gctx, &checkpoint); err != nil {
					slog.Warn("update job progress", "job", jobID, "error", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	job.Progress = 100
	return nil
}

func (r *Runner) finish(ctx context.Context, job *models.SyncJob, status models.JobStatus, errMsg string) {
	now := time.Now().UTC()
	job.Status = status
	job.Error = errMsg
	job.FinishedAt = &now
	if err := r.store.UpdateJob(ctx, job); err != nil {
		slog.Error("finalize sync job", "job", job.ID, "error", err)
	}
}
