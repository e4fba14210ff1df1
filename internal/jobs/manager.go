package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
)

// Progress is synthetic while a job runs and only reaches 100 on completion.
const maxRunningProgress = 95

// Manager owns every live job record and is the only writer of job state. All
// mutations validate the lifecycle transition, persist the metadata document
// and publish a progress update. Creation must persist before returning; every
// later write is best effort against the store.
type Manager struct {
	store  storage.Store
	cache  *Cache
	hub    *progress.Hub
	logger infra.Logger
	now    func() time.Time

	mu   sync.RWMutex
	live map[string]*domain.Job
}

func NewManager(store storage.Store, cache *Cache, hub *progress.Hub, logger infra.Logger) *Manager {
	return &Manager{
		store:  store,
		cache:  cache,
		hub:    hub,
		logger: logger,
		now:    time.Now,
		live:   make(map[string]*domain.Job),
	}
}

// Create registers a new job. The metadata document is durably written before
// the job id is handed back to the caller; a storage failure means no job.
func (m *Manager) Create(ctx context.Context, job *domain.Job) error {
	now := m.now().UTC()
	job.State = domain.JobStateCreated
	job.Progress = 0
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := m.persist(ctx, job); err != nil {
		return fmt.Errorf("%w: create job %s: %v", domain.ErrStorage, job.ID, err)
	}

	m.mu.Lock()
	m.live[job.ID] = job
	m.mu.Unlock()

	m.cache.SaveJob(ctx, job)
	m.publish(job)
	m.logger.Info().
		Str("job_id", job.ID).
		Str("client", job.ClientID).
		Str("provider", job.Provider).
		Str("modality", string(job.Modality)).
		Msg("job created")
	return nil
}

// Lookup returns a snapshot of a live job.
func (m *Manager) Lookup(jobID string) (*domain.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.live[jobID]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Dispatch marks the job handed to its execution strategy.
func (m *Manager) Dispatch(ctx context.Context, jobID string) {
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if !job.State.CanTransitionTo(domain.JobStateDispatched) {
			return false
		}
		job.State = domain.JobStateDispatched
		job.Message = "dispatched to provider"
		return true
	})
}

// SetHandle records the provider operation handle once submission succeeds
// and moves the job into processing.
func (m *Manager) SetHandle(ctx context.Context, jobID, handle string) {
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if !job.State.CanTransitionTo(domain.JobStateProcessing) {
			return false
		}
		job.State = domain.JobStateProcessing
		job.Handle = handle
		job.Message = "generation in progress"
		return true
	})
}

// ReportProgress advances the synthetic progress figure. Values are clamped
// to [0, 95] and never move backwards.
func (m *Manager) ReportProgress(ctx context.Context, jobID string, pct int, message string) {
	if pct < 0 {
		pct = 0
	}
	if pct > maxRunningProgress {
		pct = maxRunningProgress
	}
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if !job.State.CanTransitionTo(domain.JobStateProcessing) {
			return false
		}
		job.State = domain.JobStateProcessing
		if pct > job.Progress {
			job.Progress = pct
		}
		if message != "" {
			job.Message = message
		}
		return true
	})
}

// AddArtifact records a finished partial artifact. Multi-image jobs call this
// per image so a later failure still leaves the completed images attached.
func (m *Manager) AddArtifact(ctx context.Context, jobID, key string) {
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if job.State.Terminal() {
			return false
		}
		job.ArtifactKeys = append(job.ArtifactKeys, key)
		if job.ArtifactKey == "" {
			job.ArtifactKey = key
		}
		return true
	})
}

// Complete marks the job done with its artifact keys.
func (m *Manager) Complete(ctx context.Context, jobID string, keys ...string) {
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if !job.State.CanTransitionTo(domain.JobStateCompleted) {
			return false
		}
		job.State = domain.JobStateCompleted
		job.Progress = 100
		job.Message = "generation complete"
		job.Error = nil
		for _, key := range keys {
			if !containsKey(job.ArtifactKeys, key) {
				job.ArtifactKeys = append(job.ArtifactKeys, key)
			}
		}
		if job.ArtifactKey == "" && len(job.ArtifactKeys) > 0 {
			job.ArtifactKey = job.ArtifactKeys[0]
		}
		done := m.now().UTC()
		job.CompletedAt = &done
		return true
	})
	m.retire(jobID)
}

// Fail marks the job failed with a normalized error descriptor. Artifacts
// already recorded stay attached to the job.
func (m *Manager) Fail(ctx context.Context, jobID, kind, message string) {
	m.update(ctx, jobID, func(job *domain.Job) bool {
		if !job.State.CanTransitionTo(domain.JobStateFailed) {
			return false
		}
		job.State = domain.JobStateFailed
		job.Message = message
		job.Error = &domain.ErrorDescriptor{Kind: kind, Message: message}
		done := m.now().UTC()
		job.CompletedAt = &done
		return true
	})
	m.retire(jobID)
}

// update applies fn under lock, then persists, caches and publishes the new
// snapshot. A rejected transition is logged and dropped: late writes against
// terminal jobs are a normal race with cancellation.
func (m *Manager) update(ctx context.Context, jobID string, fn func(*domain.Job) bool) {
	m.mu.Lock()
	job, ok := m.live[jobID]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn().Str("job_id", jobID).Msg("update for unknown job dropped")
		return
	}
	if !fn(job) {
		m.mu.Unlock()
		m.logger.Debug().
			Str("job_id", jobID).
			Str("state", string(job.State)).
			Err(domain.ErrJobTerminal).
			Msg("transition rejected")
		return
	}
	job.UpdatedAt = m.now().UTC()
	snapshot := job.Clone()
	m.mu.Unlock()

	if err := m.persist(ctx, snapshot); err != nil {
		m.logger.Warn().Err(err).Str("job_id", jobID).Msg("metadata write failed")
	}
	m.cache.SaveJob(ctx, snapshot)
	m.publish(snapshot)
}

func (m *Manager) retire(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.live[jobID]; ok && job.State.Terminal() {
		delete(m.live, jobID)
	}
}

func (m *Manager) persist(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = m.store.Put(ctx, MetadataKey(job.ClientID, job.ID), data, "application/json")
	return err
}

func (m *Manager) publish(job *domain.Job) {
	m.hub.Publish(progress.Update{
		JobID:    job.ID,
		Status:   string(job.State),
		Progress: job.Progress,
		Message:  job.Message,
	})
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
