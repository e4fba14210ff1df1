package domain

import (
	"fmt"
	"strings"
)

// Modality enumerates the supported generation categories.
type Modality string

const (
	ModalityVideo Modality = "video"
	ModalityImage Modality = "image"
)

// ParseModality validates free-form client input.
func ParseModality(s string) (Modality, error) {
	switch Modality(strings.ToLower(strings.TrimSpace(s))) {
	case ModalityVideo:
		return ModalityVideo, nil
	case ModalityImage:
		return ModalityImage, nil
	default:
		return "", fmt.Errorf("%w: modality %q", ErrInvalidRequest, s)
	}
}

// GenerationRequest is the normalized, immutable input to the orchestrator.
type GenerationRequest struct {
	Modality        Modality
	Provider        string
	ClientID        string
	Prompt          string
	VFX             string
	CameraMovement  string
	StylePresets    map[string]string
	ReferenceImages []string
	DurationSeconds int
	Quantity        int
	Quality         string
	AspectRatio     string
}

// Validate checks the fields that can be rejected before a job exists.
// Provider-specific limits (duration, quantity) are enforced by the
// capability registry, not here.
func (r GenerationRequest) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("%w: client is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Prompt) == "" && r.VFX == "" && r.CameraMovement == "" {
		return fmt.Errorf("%w: prompt is required when no directive is supplied", ErrInvalidRequest)
	}
	switch r.Modality {
	case ModalityVideo:
		if r.DurationSeconds <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
		}
	case ModalityImage:
		if r.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: modality %q", ErrInvalidRequest, string(r.Modality))
	}
	return nil
}
