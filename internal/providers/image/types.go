// Package image contains the fire-and-wait clients for single-call image
// generation providers. Each call produces one image; multi-image requests
// are looped by the execution strategy.
package image

import "context"

// GenerateRequest describes one image call.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	Quality        string
	RequestID      string
	// Index distinguishes the calls of a multi-image batch (1-based).
	Index int
}

// Asset is a generated image.
type Asset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Asset, error)
}
