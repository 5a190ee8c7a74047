package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/your-org/photoflow/internal/storage"
)

// Fetcher loads image bytes for processing. The returned time, when
// non-nil, is the image's capture time best guess.
type Fetcher interface {
	Fetch(ctx context.Context, url, pathname string) ([]byte, *time.Time, error)
}

// ObjectFetcher resolves images from the gallery bucket by pathname first,
// falling back to an HTTP download of the url for images originating
// outside the bucket.
type ObjectFetcher struct {
	objects *storage.ObjectStore
	client  *http.Client
}

func NewObjectFetcher(objects *storage.ObjectStore) *ObjectFetcher {
	return &ObjectFetcher{
		objects: objects,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *ObjectFetcher) Fetch(ctx context.Context, url, pathname string) ([]byte, *time.Time, error) {
	if f.objects != nil && pathname != "" {
		data, modified, err := f.objects.GetObjectWithInfo(ctx, pathname)
		if err == nil {
			return data, &modified, nil
		}
	}

	if url == "" {
		return nil, nil, fmt.Errorf("image %q not in bucket and no url given", pathname)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	var takenAt *time.Time
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		takenAt = &t
	}

	return data, takenAt, nil
}
