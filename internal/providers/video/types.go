// Package video contains the fire-and-poll clients for the long-running
// video generation providers.
package video

import "context"

// ReferenceImage is the inline conditioning payload for image-to-video
// providers. Only the first selected asset is used; none of the wired
// providers supports multi-image conditioning.
type ReferenceImage struct {
	Data []byte
	MIME string
}

// SubmitRequest is the provider-agnostic submission.
type SubmitRequest struct {
	Prompt          string
	NegativePrompt  string
	DurationSeconds int
	AspectRatio     string
	Quality         string
	RequestID       string
	Reference       *ReferenceImage
}

// PollStatus is one observation of a remote operation.
type PollStatus struct {
	Done bool
	// Failed marks a provider-reported terminal failure; Message carries the
	// provider's reason.
	Failed  bool
	Message string
	// ResultRef locates the finished artifact for Fetch. Some providers
	// return the bytes inline instead.
	ResultRef string
	Data      []byte
}

// Generator is the capability contract for fire-and-poll video providers:
// submit returns an opaque correlation handle, poll observes it, fetch
// downloads the finished artifact.
type Generator interface {
	Submit(ctx context.Context, req SubmitRequest) (handle string, err error)
	Poll(ctx context.Context, handle string) (PollStatus, error)
	Fetch(ctx context.Context, resultRef string) ([]byte, error)
}
