// Package jobs implements the generation job lifecycle: creation, dispatch to
// a provider execution strategy, progress reporting and status resolution.
package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

const (
	cacheJobPrefix    = "genjob:"
	cacheCancelPrefix = "genjob:cancel:"
)

// Cache is the advisory fast tier for job records and cancellation flags. It
// always keeps a local copy and mirrors to redis when a client is configured,
// so lookups survive a redis outage and cancellation still works within one
// process. The blob store remains the system of record.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger infra.Logger

	mu      sync.RWMutex
	jobs    map[string][]byte
	cancels map[string]struct{}
}

func NewCache(rdb *redis.Client, ttl time.Duration, logger infra.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		jobs:    make(map[string][]byte),
		cancels: make(map[string]struct{}),
	}
}

// SaveJob records a snapshot of the job. Best effort: failures are logged,
// never escalated.
func (c *Cache) SaveJob(ctx context.Context, job *domain.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		c.logger.Warn().Err(err).Str("job_id", job.ID).Msg("cache: encode job")
		return
	}
	c.mu.Lock()
	c.jobs[job.ID] = data
	c.mu.Unlock()

	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheJobPrefix+job.ID, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("job_id", job.ID).Msg("cache: redis set")
	}
}

// GetJob returns the cached snapshot, if any.
func (c *Cache) GetJob(ctx context.Context, jobID string) (*domain.Job, bool) {
	c.mu.RLock()
	data, ok := c.jobs[jobID]
	c.mu.RUnlock()

	if !ok && c.rdb != nil {
		raw, err := c.rdb.Get(ctx, cacheJobPrefix+jobID).Bytes()
		if err == nil {
			data, ok = raw, true
		} else if err != redis.Nil {
			c.logger.Warn().Err(err).Str("job_id", jobID).Msg("cache: redis get")
		}
	}
	if !ok {
		return nil, false
	}
	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		c.logger.Warn().Err(err).Str("job_id", jobID).Msg("cache: decode job")
		return nil, false
	}
	return &job, true
}

// RequestCancel raises the cancellation flag for a job. Strategies observe the
// flag between poll attempts and between image calls.
func (c *Cache) RequestCancel(ctx context.Context, jobID string) {
	c.mu.Lock()
	c.cancels[jobID] = struct{}{}
	c.mu.Unlock()

	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheCancelPrefix+jobID, "1", c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("job_id", jobID).Msg("cache: redis cancel flag")
	}
}

// CancelRequested reports whether cancellation was requested for the job.
func (c *Cache) CancelRequested(ctx context.Context, jobID string) bool {
	c.mu.RLock()
	_, ok := c.cancels[jobID]
	c.mu.RUnlock()
	if ok {
		return true
	}
	if c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, cacheCancelPrefix+jobID).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("job_id", jobID).Msg("cache: redis cancel check")
		}
		return false
	}
	return n > 0
}
