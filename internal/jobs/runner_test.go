package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/storage/memory"
)

type stubLister struct {
	keys []string
	err  error
}

func (l *stubLister) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	return l.keys, l.err
}

type capturingPublisher struct {
	mu    sync.Mutex
	tasks []models.ProcessTask
	err   error
}

func (p *capturingPublisher) PublishTask(ctx context.Context, data interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, data.(models.ProcessTask))
	return nil
}

func galleryKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("gallery/img-%03d.jpg", i)
	}
	return keys
}

func waitForJob(t *testing.T, store *memory.Store, id uuid.UUID, want models.JobStatus) *models.SyncJob {
	t.Helper()
	var job *models.SyncJob
	require.Eventually(t, func() bool {
		var err error
		job, err = store.GetJob(context.Background(), id)
		return err == nil && job != nil && job.Status == want
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestRunnerCompletesJob(t *testing.T) {
	store := memory.New()
	publisher := &capturingPublisher{}
	runner := NewRunner(store, &stubLister{keys: galleryKeys(25)}, publisher, "gallery/")

	job, err := runner.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	final := waitForJob(t, store, job.ID, models.JobStatusCompleted)
	assert.Equal(t, 25, final.ImageCount)
	assert.Equal(t, 100, final.Progress)
	assert.Empty(t, final.Error)
	require.NotNil(t, final.StartedAt)
	require.NotNil(t, final.FinishedAt)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.tasks, 25)
	seen := make(map[string]struct{}, len(publisher.tasks))
	for _, task := range publisher.tasks {
		require.NotNil(t, task.JobID)
		assert.Equal(t, job.ID, *task.JobID)
		seen[task.Pathname] = struct{}{}
	}
	assert.Len(t, seen, 25, "every gallery key enqueued exactly once")
}

func TestRunnerEmptyGallery(t *testing.T) {
	store := memory.New()
	publisher := &capturingPublisher{}
	runner := NewRunner(store, &stubLister{}, publisher, "")

	job, err := runner.Start(context.Background())
	require.NoError(t, err)

	final := waitForJob(t, store, job.ID, models.JobStatusCompleted)
	assert.Equal(t, 0, final.ImageCount)
	assert.Equal(t, 100, final.Progress)
	assert.Empty(t, publisher.tasks)
}

func TestRunnerListFailure(t *testing.T) {
	store := memory.New()
	runner := NewRunner(store, &stubLister{err: errors.New("bucket unavailable")}, &capturingPublisher{}, "")

	job, err := runner.Start(context.Background())
	require.NoError(t, err)

	final := waitForJob(t, store, job.ID, models.JobStatusFailed)
	assert.Contains(t, final.Error, "bucket unavailable")
	require.NotNil(t, final.FinishedAt)
}

func TestRunnerPublishFailure(t *testing.T) {
	store := memory.New()
	publisher := &capturingPublisher{err: errors.New("stream down")}
	runner := NewRunner(store, &stubLister{keys: galleryKeys(3)}, publisher, "")

	job, err := runner.Start(context.Background())
	require.NoError(t, err)

	final := waitForJob(t, store, job.ID, models.JobStatusFailed)
	assert.Contains(t, final.Error, "stream down")
	assert.Equal(t, 3, final.ImageCount)
}
