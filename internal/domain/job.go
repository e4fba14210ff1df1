package domain

import "time"

// JobState enumerates job lifecycle states.
type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateDispatched JobState = "dispatched"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// CanTransitionTo enforces the forward-only lifecycle:
// created -> dispatched -> processing -> completed|failed.
// Terminal transitions are allowed from any non-terminal state so that a
// submit failure can fail a job that never started processing.
func (s JobState) CanTransitionTo(next JobState) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case JobStateDispatched:
		return s == JobStateCreated
	case JobStateProcessing:
		return s == JobStateCreated || s == JobStateDispatched || s == JobStateProcessing
	case JobStateCompleted, JobStateFailed:
		return true
	default:
		return false
	}
}

// Error kinds recorded on failed jobs.
const (
	ErrorKindProvider  = "provider_error"
	ErrorKindTimeout   = "timeout"
	ErrorKindCancelled = "cancelled"
	ErrorKindStorage   = "storage_error"
)

// ErrorDescriptor is the normalized, user-readable failure record.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Job is one generation request's full lifecycle record. It is owned
// exclusively by the lifecycle manager; a single strategy goroutine drives it
// and it becomes immutable once terminal. The JSON form is the durable
// metadata document persisted alongside the output artifact.
type Job struct {
	ID             string           `json:"job_id"`
	Modality       Modality         `json:"modality"`
	Provider       string           `json:"provider"`
	ClientID       string           `json:"client"`
	State          JobState         `json:"status"`
	Progress       int              `json:"progress"`
	Message        string           `json:"message,omitempty"`
	ComposedPrompt string           `json:"composed_prompt"`
	PromptLayers   []string         `json:"prompt_layers,omitempty"`
	Handle         string           `json:"operation_handle,omitempty"`
	ArtifactKey    string           `json:"artifact_key,omitempty"`
	ArtifactKeys   []string         `json:"artifact_keys,omitempty"`
	Error          *ErrorDescriptor `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so cached and published views never alias the
// manager-owned record.
func (j *Job) Clone() *Job {
	out := *j
	if j.PromptLayers != nil {
		out.PromptLayers = append([]string(nil), j.PromptLayers...)
	}
	if j.ArtifactKeys != nil {
		out.ArtifactKeys = append([]string(nil), j.ArtifactKeys...)
	}
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// JobView is the read model served to status queries.
type JobView struct {
	JobID       string           `json:"job_id"`
	Modality    Modality         `json:"modality"`
	Provider    string           `json:"provider"`
	Status      JobState         `json:"status"`
	Progress    int              `json:"progress"`
	Message     string           `json:"message,omitempty"`
	ArtifactURL string           `json:"artifact_url,omitempty"`
	Error       *ErrorDescriptor `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
