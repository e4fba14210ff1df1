// Package providers describes the generative backends the orchestrator can
// dispatch to: their modality, limits, pricing and execution shape.
package providers

import (
	"fmt"
	"math"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
)

// Kind is the execution shape of a provider.
type Kind string

const (
	// KindFireAndWait providers return the result from a single bounded call.
	KindFireAndWait Kind = "fire-and-wait"
	// KindFireAndPoll providers return an operation handle that is polled
	// until done or timeout.
	KindFireAndPoll Kind = "fire-and-poll"
)

// Descriptor is the static capability record for one provider. Read-only
// after registry construction.
type Descriptor struct {
	ID           string
	Modality     domain.Modality
	Kind         Kind
	Available    bool
	Rate         float64            // per second (video) or per image
	QualityRates map[string]float64 // optional per-quality-tier override
	MaxDuration  int                // seconds, video only
	MaxQuantity  int                // images, image only
	MaxWidth     int
	MaxHeight    int

	PollInterval     time.Duration
	MaxPollAttempts  int
	CallDelay        time.Duration // inter-call delay for multi-image loops
	EstimatedSeconds int           // advertised wall-clock estimate
}

// EstimateCost is a pure linear cost function: rate * quantity, rounded to
// two decimal places. Quantity is seconds for video, image count for images.
func (d Descriptor) EstimateCost(quality string, quantity int) float64 {
	rate := d.Rate
	if r, ok := d.QualityRates[quality]; ok {
		rate = r
	}
	return math.Round(rate*float64(quantity)*100) / 100
}

// ClampDuration caps a requested video duration at the provider maximum.
func (d Descriptor) ClampDuration(seconds int) int {
	if d.MaxDuration > 0 && seconds > d.MaxDuration {
		return d.MaxDuration
	}
	return seconds
}

// ClampQuantity caps a requested image count at the provider maximum.
func (d Descriptor) ClampQuantity(n int) int {
	if d.MaxQuantity > 0 && n > d.MaxQuantity {
		return d.MaxQuantity
	}
	return n
}

// Availability carries the startup-time credential checks. Computed once in
// main from loaded config and injected here; never recomputed per call.
type Availability struct {
	Veo         bool
	Kling       bool
	GeminiImage bool
	QwenImage   bool
}

type registryKey struct {
	modality domain.Modality
	id       string
}

// Registry resolves modality/provider pairs to descriptors. Immutable after
// construction.
type Registry struct {
	byKey map[registryKey]Descriptor
}

// NewRegistry builds the static provider catalogue with availability flags
// applied.
func NewRegistry(avail Availability) *Registry {
	descriptors := []Descriptor{
		{
			ID:        "veo",
			Modality:  domain.ModalityVideo,
			Kind:      KindFireAndPoll,
			Available: avail.Veo,
			Rate:      0.10,
			QualityRates: map[string]float64{
				"720p":  0.05,
				"1080p": 0.10,
				"4k":    0.20,
			},
			MaxDuration:      8,
			PollInterval:     20 * time.Second,
			MaxPollAttempts:  36,
			EstimatedSeconds: 90,
		},
		{
			ID:               "kling",
			Modality:         domain.ModalityVideo,
			Kind:             KindFireAndPoll,
			Available:        avail.Kling,
			Rate:             0.08,
			MaxDuration:      10,
			PollInterval:     10 * time.Second,
			MaxPollAttempts:  72,
			EstimatedSeconds: 180,
		},
		{
			ID:               "gemini-image",
			Modality:         domain.ModalityImage,
			Kind:             KindFireAndWait,
			Available:        avail.GeminiImage,
			Rate:             0.04,
			MaxQuantity:      4,
			MaxWidth:         2048,
			MaxHeight:        2048,
			CallDelay:        2 * time.Second,
			EstimatedSeconds: 20,
		},
		{
			ID:               "qwen-image",
			Modality:         domain.ModalityImage,
			Kind:             KindFireAndWait,
			Available:        avail.QwenImage,
			Rate:             0.02,
			MaxQuantity:      4,
			MaxWidth:         1664,
			MaxHeight:        1664,
			CallDelay:        2 * time.Second,
			EstimatedSeconds: 30,
		},
	}

	byKey := make(map[registryKey]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byKey[registryKey{d.Modality, d.ID}] = d
	}
	return &Registry{byKey: byKey}
}

// Resolve returns the descriptor for a modality/provider pair.
func (r *Registry) Resolve(modality domain.Modality, providerID string) (Descriptor, error) {
	d, ok := r.byKey[registryKey{modality, providerID}]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s/%s", domain.ErrUnknownProvider, modality, providerID)
	}
	return d, nil
}

// Default returns the default provider id for a modality.
func (r *Registry) Default(modality domain.Modality) string {
	switch modality {
	case domain.ModalityVideo:
		return "veo"
	case domain.ModalityImage:
		return "gemini-image"
	default:
		return ""
	}
}
