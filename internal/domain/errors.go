package domain

import "errors"

var (
	// ErrInvalidRequest covers malformed or missing required fields. Surfaced
	// synchronously; no job is created.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProviderUnavailable means the provider exists but has no credentials
	// configured for this process.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUnknownProvider means the modality/provider pair is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownTemplate means a canonical VFX id is missing from the registry.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrJobNotFound means no job record exists anywhere searched.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobTerminal marks a late update against a completed or failed job.
	// Logged by the lifecycle manager, never escalated to callers.
	ErrJobTerminal = errors.New("job already terminal")
	// ErrStorage wraps durable metadata write failures. Fatal at job creation,
	// best-effort everywhere else.
	ErrStorage = errors.New("storage error")
)
