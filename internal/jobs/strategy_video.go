package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/video"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

// VideoRun is one fire-and-poll execution: submit the prompt, then poll the
// returned handle at the provider's interval until done or the attempt budget
// runs out.
type VideoRun struct {
	JobID      string
	ClientID   string
	Descriptor providers.Descriptor
	Generator  video.Generator
	Submit     video.SubmitRequest
}

// VideoStrategy drives fire-and-poll providers. Exactly one strategy
// goroutine runs per job.
type VideoStrategy struct {
	manager *Manager
	store   storage.Store
	cache   *Cache
	logger  infra.Logger
	// sleep is injectable so tests run without real poll intervals.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewVideoStrategy(manager *Manager, store storage.Store, cache *Cache, logger infra.Logger) *VideoStrategy {
	return &VideoStrategy{
		manager: manager,
		store:   store,
		cache:   cache,
		logger:  logger,
		sleep:   ctxSleep,
	}
}

func (s *VideoStrategy) Execute(ctx context.Context, run VideoRun) {
	s.manager.Dispatch(ctx, run.JobID)

	handle, err := run.Generator.Submit(ctx, run.Submit)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", run.JobID).Msg("video submit failed")
		s.manager.Fail(ctx, run.JobID, domain.ErrorKindProvider, friendlyProviderMessage(err.Error()))
		return
	}
	s.manager.SetHandle(ctx, run.JobID, handle)

	desc := run.Descriptor
	for attempt := 1; attempt <= desc.MaxPollAttempts; attempt++ {
		if s.cache.CancelRequested(ctx, run.JobID) {
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindCancelled, "cancelled by user")
			return
		}
		if err := s.sleep(ctx, desc.PollInterval); err != nil {
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindCancelled, "orchestrator shutting down")
			return
		}

		status, err := run.Generator.Poll(ctx, handle)
		if err != nil {
			// Transient poll errors burn an attempt but do not fail the job.
			s.logger.Warn().Err(err).
				Str("job_id", run.JobID).
				Int("attempt", attempt).
				Msg("poll failed")
			continue
		}
		if status.Done && status.Failed {
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindProvider, friendlyProviderMessage(status.Message))
			return
		}
		if status.Done {
			s.finish(ctx, run, status)
			return
		}
		s.manager.ReportProgress(ctx, run.JobID, attempt*maxRunningProgress/desc.MaxPollAttempts, "rendering")
	}

	budget := time.Duration(desc.MaxPollAttempts) * desc.PollInterval
	s.manager.Fail(ctx, run.JobID, domain.ErrorKindTimeout,
		fmt.Sprintf("generation did not finish within %s", budget))
}

func (s *VideoStrategy) finish(ctx context.Context, run VideoRun, status video.PollStatus) {
	data := status.Data
	if len(data) == 0 {
		fetched, err := run.Generator.Fetch(ctx, status.ResultRef)
		if err != nil {
			s.logger.Error().Err(err).Str("job_id", run.JobID).Msg("artifact fetch failed")
			s.manager.Fail(ctx, run.JobID, domain.ErrorKindProvider, friendlyProviderMessage(err.Error()))
			return
		}
		data = fetched
	}

	key := VideoArtifactKey(run.ClientID, run.JobID)
	if _, err := s.store.Put(ctx, key, data, "video/mp4"); err != nil {
		s.logger.Error().Err(err).Str("job_id", run.JobID).Msg("artifact write failed")
		s.manager.Fail(ctx, run.JobID, domain.ErrorKindStorage, "failed to store the generated video")
		return
	}
	s.manager.Complete(ctx, run.JobID, key)
	s.logger.Info().
		Str("job_id", run.JobID).
		Str("artifact_key", key).
		Int("bytes", len(data)).
		Msg("video job completed")
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
