// Package progress fans job progress updates out to websocket subscribers.
package progress

import (
	"sync"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// Update is one progress event for a job. It mirrors the status payload so
// websocket clients and polling clients see the same shape.
type Update struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

// Subscription is a registered listener for one job's updates.
type Subscription struct {
	jobID string
	ch    chan Update
}

// Updates returns the channel events arrive on. The channel is closed when
// the subscription is removed from the hub.
func (s *Subscription) Updates() <-chan Update {
	return s.ch
}

// Hub routes updates by job id. Publishing never blocks: a subscriber that
// cannot keep up has events dropped rather than stalling the generation
// strategy that reports them.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	logger infra.Logger
}

func NewHub(logger infra.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a listener for the given job.
func (h *Hub) Subscribe(jobID string) *Subscription {
	sub := &Subscription{jobID: jobID, ch: make(chan Update, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*Subscription]struct{})
	}
	h.subs[jobID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the listener and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	listeners, ok := h.subs[sub.jobID]
	if !ok {
		return
	}
	if _, ok := listeners[sub]; !ok {
		return
	}
	delete(listeners, sub)
	if len(listeners) == 0 {
		delete(h.subs, sub.jobID)
	}
	close(sub.ch)
}

// Publish delivers an update to every subscriber of the job, best effort.
func (h *Hub) Publish(update Update) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[update.JobID] {
		select {
		case sub.ch <- update:
		default:
			h.logger.Warn().
				Str("job_id", update.JobID).
				Msg("progress: dropping update for slow subscriber")
		}
	}
}

// SubscriberCount reports the number of active listeners for a job.
func (h *Hub) SubscriberCount(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[jobID])
}
