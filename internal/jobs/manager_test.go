package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

type failingStore struct{}

func (failingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", errors.New("disk full")
}
func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, storage.ErrNotFound
}
func (failingStore) Head(ctx context.Context, key string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrNotFound
}
func (failingStore) List(ctx context.Context, prefix string) ([]string, error) { return nil, nil }
func (failingStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", storage.ErrNotFound
}

func newTestManager(t *testing.T) (*Manager, storage.Store) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	cache := NewCache(nil, 0, zerolog.Nop())
	hub := progress.NewHub(zerolog.Nop())
	return NewManager(store, cache, hub, zerolog.Nop()), store
}

func newJob(id string) *domain.Job {
	return &domain.Job{
		ID:             id,
		Modality:       domain.ModalityVideo,
		Provider:       "veo",
		ClientID:       "dfsa",
		ComposedPrompt: "a slow pan over a vineyard",
	}
}

func TestManagerCreatePersistsBeforeReturn(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Create(ctx, newJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := store.Get(ctx, MetadataKey("dfsa", "job-1")); err != nil {
		t.Fatalf("metadata document missing after Create: %v", err)
	}
	job, ok := manager.Lookup("job-1")
	if !ok {
		t.Fatal("job not in live index")
	}
	if job.State != domain.JobStateCreated || job.Progress != 0 {
		t.Errorf("job = %+v", job)
	}
}

func TestManagerCreateFailsWhenStoreFails(t *testing.T) {
	cache := NewCache(nil, 0, zerolog.Nop())
	hub := progress.NewHub(zerolog.Nop())
	manager := NewManager(failingStore{}, cache, hub, zerolog.Nop())

	err := manager.Create(context.Background(), newJob("job-1"))
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if _, ok := manager.Lookup("job-1"); ok {
		t.Error("job registered despite failed persist")
	}
}

func TestManagerProgressClampedAndMonotonic(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	if err := manager.Create(ctx, newJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	manager.ReportProgress(ctx, "job-1", 40, "rendering")
	manager.ReportProgress(ctx, "job-1", 30, "rendering") // must not regress
	job, _ := manager.Lookup("job-1")
	if job.Progress != 40 {
		t.Errorf("progress = %d, want 40", job.Progress)
	}

	manager.ReportProgress(ctx, "job-1", 400, "rendering")
	job, _ = manager.Lookup("job-1")
	if job.Progress != maxRunningProgress {
		t.Errorf("progress = %d, want cap %d", job.Progress, maxRunningProgress)
	}
	if job.State != domain.JobStateProcessing {
		t.Errorf("state = %s", job.State)
	}
}

func TestManagerTerminalJobsAreImmutable(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()
	if err := manager.Create(ctx, newJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	manager.Fail(ctx, "job-1", domain.ErrorKindProvider, "upstream exploded")

	// Late updates from a racing strategy are dropped, not escalated.
	manager.ReportProgress(ctx, "job-1", 80, "rendering")
	manager.Complete(ctx, "job-1", "dfsa/generations/job-1/output.mp4")

	data, err := store.Get(ctx, MetadataKey("dfsa", "job-1"))
	if err != nil {
		t.Fatalf("metadata read: %v", err)
	}
	var persisted domain.Job
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if persisted.State != domain.JobStateFailed {
		t.Errorf("state = %s, want failed", persisted.State)
	}
	if persisted.Error == nil || persisted.Error.Kind != domain.ErrorKindProvider {
		t.Errorf("error = %+v", persisted.Error)
	}
}

func TestManagerCompleteSetsFullProgress(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	job := newJob("job-1")
	if err := manager.Create(ctx, job); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	manager.Dispatch(ctx, "job-1")
	manager.SetHandle(ctx, "job-1", "operations/op-1")
	manager.Complete(ctx, "job-1", "dfsa/generations/job-1/output.mp4")

	// Terminal jobs leave the live index; the cache still has the snapshot.
	if _, ok := manager.Lookup("job-1"); ok {
		t.Error("terminal job still in live index")
	}
	cached, ok := manager.cache.GetJob(ctx, "job-1")
	if !ok {
		t.Fatal("terminal job missing from cache")
	}
	if cached.State != domain.JobStateCompleted || cached.Progress != 100 {
		t.Errorf("cached = %+v", cached)
	}
	if cached.ArtifactKey != "dfsa/generations/job-1/output.mp4" {
		t.Errorf("artifact key = %q", cached.ArtifactKey)
	}
	if cached.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}
