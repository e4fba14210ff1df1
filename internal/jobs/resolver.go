package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

// LiveIndex looks up jobs still owned by a lifecycle manager in this process.
type LiveIndex interface {
	Lookup(jobID string) (*domain.Job, bool)
}

// Resolver answers status queries. Lookup order: live jobs, then cache, then
// a fan-out scan of every tenant prefix in the blob store. Job ids are
// unguessable UUIDs, so the fan-out does not need the caller to know the
// owning tenant.
type Resolver struct {
	live       LiveIndex
	cache      *Cache
	store      storage.Store
	tenants    []string
	presignTTL time.Duration
	logger     infra.Logger
}

func NewResolver(live LiveIndex, cache *Cache, store storage.Store, tenants []string, presignTTL time.Duration, logger infra.Logger) *Resolver {
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	return &Resolver{
		live:       live,
		cache:      cache,
		store:      store,
		tenants:    tenants,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

// Resolve returns the current view of a job or ErrJobNotFound.
func (r *Resolver) Resolve(ctx context.Context, jobID string) (domain.JobView, error) {
	if job, ok := r.live.Lookup(jobID); ok {
		return r.view(ctx, job), nil
	}
	if job, ok := r.cache.GetJob(ctx, jobID); ok {
		return r.view(ctx, job), nil
	}
	job, err := r.scan(ctx, jobID)
	if err != nil {
		return domain.JobView{}, err
	}
	r.cache.SaveJob(ctx, job)
	return r.view(ctx, job), nil
}

func (r *Resolver) scan(ctx context.Context, jobID string) (*domain.Job, error) {
	for _, tenant := range r.tenants {
		data, err := r.store.Get(ctx, MetadataKey(tenant, jobID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		var job domain.Job
		if err := json.Unmarshal(data, &job); err != nil {
			r.logger.Warn().Err(err).
				Str("job_id", jobID).
				Str("tenant", tenant).
				Msg("corrupt metadata document")
			continue
		}
		return &job, nil
	}
	return nil, domain.ErrJobNotFound
}

// view builds the read model. A job recorded as completed whose artifact is
// not yet visible in the store is reported as still processing at 95: the
// metadata write and the artifact write are not atomic, and callers retry on
// processing but give up on completed.
func (r *Resolver) view(ctx context.Context, job *domain.Job) domain.JobView {
	view := domain.JobView{
		JobID:     job.ID,
		Modality:  job.Modality,
		Provider:  job.Provider,
		Status:    job.State,
		Progress:  job.Progress,
		Message:   job.Message,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.State != domain.JobStateCompleted {
		return view
	}
	if job.ArtifactKey == "" {
		view.Status = domain.JobStateProcessing
		view.Progress = maxRunningProgress
		view.Message = "finalizing output"
		return view
	}
	if _, err := r.store.Head(ctx, job.ArtifactKey); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn().Err(err).Str("job_id", job.ID).Msg("artifact probe failed")
		}
		view.Status = domain.JobStateProcessing
		view.Progress = maxRunningProgress
		view.Message = "finalizing output"
		return view
	}
	url, err := r.store.Presign(ctx, job.ArtifactKey, r.presignTTL)
	if err != nil {
		r.logger.Warn().Err(err).Str("job_id", job.ID).Msg("presign failed")
		return view
	}
	view.ArtifactURL = url
	return view
}
