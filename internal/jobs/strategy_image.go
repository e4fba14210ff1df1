package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/image"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

// ImageRun is one fire-and-wait execution: a bounded provider call per image,
// with the provider's inter-call delay between them.
type ImageRun struct {
	JobID      string
	ClientID   string
	Quantity   int
	Descriptor providers.Descriptor
	Generator  image.Generator
	Request    image.GenerateRequest
}

// ImageStrategy drives fire-and-wait providers. Each finished image is
// persisted and recorded immediately, so a failure partway through a batch
// fails the job while keeping the images already produced.
type ImageStrategy struct {
	manager *Manager
	store   storage.Store
	cache   *Cache
	logger  infra.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewImageStrategy(manager *Manager, store storage.Store, cache *Cache, logger infra.Logger) *ImageStrategy {
	return &ImageStrategy{
		manager: manager,
		store:   store,
		cache:   cache,
		logger:  logger,
		sleep:   ctxSleep,
	}
}

func (s *ImageStrategy) Execute(ctx context.Context, run ImageRun) {
	s.manager.Dispatch(ctx, run.JobID)

	quantity := run.Quantity
	if quantity < 1 {
		quantity = 1
	}
	keys := make([]string, 0, quantity)
	for i := 1; i <= quantity; i++ {
		if s.cache.CancelRequested(ctx, run.JobID) {
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindCancelled, "cancelled by user")
			return
		}
		if i > 1 {
			if err := s.sleep(ctx, run.Descriptor.CallDelay); err != nil {
				s.manager.Fail(ctx, run.JobID, domain.ErrorKindCancelled, "orchestrator shutting down")
				return
			}
		}

		req := run.Request
		req.Index = i
		asset, err := run.Generator.Generate(ctx, req)
		if err != nil {
			s.logger.Error().Err(err).
				Str("job_id", run.JobID).
				Int("index", i).
				Int("completed", len(keys)).
				Msg("image generation failed")
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindProvider,
				fmt.Sprintf("image %d of %d failed: %s", i, quantity, friendlyProviderMessage(err.Error())))
			return
		}

		key := ImageArtifactKey(run.ClientID, run.JobID, i)
		if _, err := s.store.Put(ctx, key, asset.Data, asset.MIME); err != nil {
			s.logger.Error().Err(err).Str("job_id", run.JobID).Int("index", i).Msg("artifact write failed")
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindStorage,
				fmt.Sprintf("failed to store image %d of %d", i, quantity))
			return
		}
		keys = append(keys, key)
		s.manager.AddArtifact(ctx, run.JobID, key)
		s.manager.ReportProgress(ctx, run.JobID, i*maxRunningProgress/quantity,
			fmt.Sprintf("generated %d of %d images", i, quantity))
	}

	s.manager.Complete(ctx, run.JobID, keys...)
	s.logger.Info().
		Str("job_id", run.JobID).
		Int("images", len(keys)).
		Msg("image job completed")
}
