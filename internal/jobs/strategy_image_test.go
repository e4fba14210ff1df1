package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/image"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

// fakeImageGen fails on the configured 1-based call index.
type fakeImageGen struct {
	failAt int
	calls  int
}

func (f *fakeImageGen) Generate(ctx context.Context, req image.GenerateRequest) (image.Asset, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return image.Asset{}, errors.New("upstream rejected the request")
	}
	return image.Asset{
		Data: []byte(fmt.Sprintf("png-%d", req.Index)),
		MIME: "image/png",
	}, nil
}

type imageFixture struct {
	manager  *Manager
	cache    *Cache
	store    storage.Store
	strategy *ImageStrategy
}

func newImageFixture(t *testing.T) *imageFixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	cache := NewCache(nil, 0, zerolog.Nop())
	hub := progress.NewHub(zerolog.Nop())
	manager := NewManager(store, cache, hub, zerolog.Nop())
	strategy := NewImageStrategy(manager, store, cache, zerolog.Nop())
	strategy.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return &imageFixture{manager: manager, cache: cache, store: store, strategy: strategy}
}

func imageDescriptor() providers.Descriptor {
	return providers.Descriptor{
		ID:          "gemini-image",
		Modality:    domain.ModalityImage,
		Kind:        providers.KindFireAndWait,
		MaxQuantity: 4,
		CallDelay:   2 * time.Second,
	}
}

func newImageJob(id string) *domain.Job {
	return &domain.Job{
		ID:             id,
		Modality:       domain.ModalityImage,
		Provider:       "gemini-image",
		ClientID:       "atlas",
		ComposedPrompt: "a flat lay of stationery",
	}
}

func TestImageStrategyCompletesBatch(t *testing.T) {
	f := newImageFixture(t)
	ctx := context.Background()
	if err := f.manager.Create(ctx, newImageJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	f.strategy.Execute(ctx, ImageRun{
		JobID:      "job-1",
		ClientID:   "atlas",
		Quantity:   3,
		Descriptor: imageDescriptor(),
		Generator:  &fakeImageGen{},
		Request:    image.GenerateRequest{Prompt: "p", RequestID: "job-1"},
	})

	job, ok := f.cache.GetJob(ctx, "job-1")
	if !ok {
		t.Fatal("job missing from cache")
	}
	if job.State != domain.JobStateCompleted || job.Progress != 100 {
		t.Fatalf("job = %+v", job)
	}
	if len(job.ArtifactKeys) != 3 {
		t.Fatalf("artifact keys = %v", job.ArtifactKeys)
	}
	for i := 1; i <= 3; i++ {
		key := ImageArtifactKey("atlas", "job-1", i)
		data, err := f.store.Get(ctx, key)
		if err != nil {
			t.Fatalf("artifact %d missing: %v", i, err)
		}
		if string(data) != fmt.Sprintf("png-%d", i) {
			t.Errorf("artifact %d = %q", i, data)
		}
	}
}

func TestImageStrategyRetainsPartialResultsOnFailure(t *testing.T) {
	f := newImageFixture(t)
	ctx := context.Background()
	if err := f.manager.Create(ctx, newImageJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	f.strategy.Execute(ctx, ImageRun{
		JobID:      "job-1",
		ClientID:   "atlas",
		Quantity:   3,
		Descriptor: imageDescriptor(),
		Generator:  &fakeImageGen{failAt: 2},
		Request:    image.GenerateRequest{Prompt: "p", RequestID: "job-1"},
	})

	job, ok := f.cache.GetJob(ctx, "job-1")
	if !ok {
		t.Fatal("job missing from cache")
	}
	if job.State != domain.JobStateFailed {
		t.Fatalf("state = %s", job.State)
	}
	// The first image survived the batch failure.
	if len(job.ArtifactKeys) != 1 || job.ArtifactKeys[0] != ImageArtifactKey("atlas", "job-1", 1) {
		t.Errorf("artifact keys = %v", job.ArtifactKeys)
	}
	if _, err := f.store.Get(ctx, ImageArtifactKey("atlas", "job-1", 1)); err != nil {
		t.Errorf("partial artifact missing: %v", err)
	}
	if job.Error == nil || job.Error.Kind != domain.ErrorKindProvider {
		t.Errorf("error = %+v", job.Error)
	}
}

func TestImageStrategyHonorsCancellation(t *testing.T) {
	f := newImageFixture(t)
	ctx := context.Background()
	if err := f.manager.Create(ctx, newImageJob("job-1")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	f.cache.RequestCancel(ctx, "job-1")

	gen := &fakeImageGen{}
	f.strategy.Execute(ctx, ImageRun{
		JobID:      "job-1",
		ClientID:   "atlas",
		Quantity:   2,
		Descriptor: imageDescriptor(),
		Generator:  gen,
	})

	job, _ := f.cache.GetJob(ctx, "job-1")
	if job.Error == nil || job.Error.Kind != domain.ErrorKindCancelled {
		t.Fatalf("error = %+v, want cancelled", job.Error)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times after cancellation", gen.calls)
	}
}
