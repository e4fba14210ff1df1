// Package prompt holds the optional prompt enhancement layer. An enhancer
// takes the composed generation prompt and rewrites it with richer
// cinematography language; when enhancement is unavailable or fails the
// composed prompt passes through untouched.
package prompt

import (
	"context"
	"strings"
)

type EnhanceRequest struct {
	// Prompt is the composed prompt to enrich.
	Prompt string
	// Modality is "video" or "image" and steers the enhancement wording.
	Modality string
	// StyleHints carries the request's style presets, if any.
	StyleHints []string
}

type EnhanceResponse struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"-"`
}

type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error)
}

const (
	geminiProviderName = "gemini"
	staticProviderName = "static"
)

// StaticEnhancer is the no-network fallback: it returns the composed prompt
// as-is, trimmed. Keeping it behind the Enhancer interface means callers never
// branch on whether enhancement is configured.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	return &EnhanceResponse{
		Prompt:   strings.TrimSpace(req.Prompt),
		Provider: staticProviderName,
	}, nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
