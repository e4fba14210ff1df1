package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/prompt"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/image"
	enhance "github.com/Snoop111/creative-ai-studio-demo/internal/providers/prompt"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/video"
)

// Negative guidance sent with every provider call.
const defaultNegativePrompt = "blurry, low quality, distorted, deformed, watermark, text overlay"

// Receipt is the synchronous answer to a generation request. Everything else
// about the job is asynchronous.
type Receipt struct {
	JobID                string          `json:"job_id"`
	Status               domain.JobState `json:"status"`
	EstimatedCost        float64         `json:"estimated_cost"`
	EstimatedTimeSeconds int             `json:"estimated_time_seconds"`
	Provider             string          `json:"provider"`
	ComposedPrompt       string          `json:"composed_prompt"`
}

// OrchestratorOptions wires the orchestrator's collaborators. Enhancer may be
// nil, in which case the composed prompt is used as-is.
type OrchestratorOptions struct {
	Registry        *providers.Registry
	Composer        *prompt.Composer
	Enhancer        enhance.Enhancer
	EnhancerTimeout time.Duration
	Manager         *Manager
	Dispatcher      *Dispatcher
	Cache           *Cache
	VideoStrategy   *VideoStrategy
	ImageStrategy   *ImageStrategy
	VideoGenerators map[string]video.Generator
	ImageGenerators map[string]image.Generator
	Logger          infra.Logger
}

// Orchestrator validates generation requests, composes the prompt, creates
// the job and hands it to the matching execution strategy.
type Orchestrator struct {
	registry        *providers.Registry
	composer        *prompt.Composer
	enhancer        enhance.Enhancer
	enhancerTimeout time.Duration
	manager         *Manager
	dispatcher      *Dispatcher
	cache           *Cache
	videoStrategy   *VideoStrategy
	imageStrategy   *ImageStrategy
	videoGens       map[string]video.Generator
	imageGens       map[string]image.Generator
	logger          infra.Logger
	newID           func() string
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	timeout := opts.EnhancerTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Orchestrator{
		registry:        opts.Registry,
		composer:        opts.Composer,
		enhancer:        opts.Enhancer,
		enhancerTimeout: timeout,
		manager:         opts.Manager,
		dispatcher:      opts.Dispatcher,
		cache:           opts.Cache,
		videoStrategy:   opts.VideoStrategy,
		imageStrategy:   opts.ImageStrategy,
		videoGens:       opts.VideoGenerators,
		imageGens:       opts.ImageGenerators,
		logger:          opts.Logger,
		newID:           uuid.NewString,
	}
}

// Submit runs the synchronous half of a generation: validate, resolve the
// provider, compose the prompt and durably create the job. The strategy then
// runs in the background and the receipt is returned immediately.
func (o *Orchestrator) Submit(ctx context.Context, req domain.GenerationRequest) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	providerID := req.Provider
	if providerID == "" {
		providerID = o.registry.Default(req.Modality)
	}
	desc, err := o.registry.Resolve(req.Modality, providerID)
	if err != nil {
		return Receipt{}, err
	}
	if !desc.Available {
		return Receipt{}, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, desc.ID)
	}

	duration := desc.ClampDuration(req.DurationSeconds)
	quantity := desc.ClampQuantity(req.Quantity)

	references, refNotes, err := decodeReferences(req.ReferenceImages)
	if err != nil {
		return Receipt{}, err
	}

	composed, err := o.composer.Compose(prompt.Input{
		RawPrompt:             req.Prompt,
		VFX:                   req.VFX,
		CameraMovement:        req.CameraMovement,
		StylePresets:          req.StylePresets,
		ReferenceDescriptions: refNotes,
		Modality:              req.Modality,
		Provider:              desc.ID,
		DurationSeconds:       duration,
		AspectRatio:           req.AspectRatio,
	})
	if err != nil {
		return Receipt{}, err
	}

	finalPrompt, layers := o.enhancePrompt(ctx, composed, req)

	jobID := o.newID()
	job := &domain.Job{
		ID:             jobID,
		Modality:       req.Modality,
		Provider:       desc.ID,
		ClientID:       req.ClientID,
		ComposedPrompt: finalPrompt,
		PromptLayers:   layers,
	}
	if err := o.manager.Create(ctx, job); err != nil {
		return Receipt{}, err
	}

	switch desc.Kind {
	case providers.KindFireAndPoll:
		gen := o.videoGens[desc.ID]
		submit := video.SubmitRequest{
			Prompt:          finalPrompt,
			NegativePrompt:  defaultNegativePrompt,
			DurationSeconds: duration,
			AspectRatio:     req.AspectRatio,
			Quality:         req.Quality,
			RequestID:       jobID,
		}
		if len(references) > 0 {
			// Only the first selected reference conditions the video.
			submit.Reference = references[0]
		}
		run := VideoRun{JobID: jobID, ClientID: req.ClientID, Descriptor: desc, Generator: gen, Submit: submit}
		o.dispatcher.Dispatch(jobID, func(ctx context.Context) {
			o.videoStrategy.Execute(ctx, run)
		})
	case providers.KindFireAndWait:
		gen := o.imageGens[desc.ID]
		run := ImageRun{
			JobID:      jobID,
			ClientID:   req.ClientID,
			Quantity:   quantity,
			Descriptor: desc,
			Generator:  gen,
			Request: image.GenerateRequest{
				Prompt:         finalPrompt,
				NegativePrompt: defaultNegativePrompt,
				AspectRatio:    req.AspectRatio,
				Quality:        req.Quality,
				RequestID:      jobID,
			},
		}
		o.dispatcher.Dispatch(jobID, func(ctx context.Context) {
			o.imageStrategy.Execute(ctx, run)
		})
	}

	units := quantity
	if req.Modality == domain.ModalityVideo {
		units = duration
	}
	return Receipt{
		JobID:                jobID,
		Status:               domain.JobStateCreated,
		EstimatedCost:        desc.EstimateCost(req.Quality, units),
		EstimatedTimeSeconds: desc.EstimatedSeconds,
		Provider:             desc.ID,
		ComposedPrompt:       finalPrompt,
	}, nil
}

// Cancel raises the cancellation flag for a running job. Terminal jobs are
// rejected; unknown jobs are reported as not found.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) error {
	job, ok := o.manager.Lookup(jobID)
	if !ok {
		job, ok = o.cache.GetJob(ctx, jobID)
	}
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.State.Terminal() {
		return domain.ErrJobTerminal
	}
	o.cache.RequestCancel(ctx, jobID)
	o.logger.Info().Str("job_id", jobID).Msg("cancellation requested")
	return nil
}

// enhancePrompt runs the optional enhancement step under its own timeout.
// Any failure quietly falls back to the composed text.
func (o *Orchestrator) enhancePrompt(ctx context.Context, composed prompt.Composed, req domain.GenerationRequest) (string, []string) {
	layers := composed.Layers
	if o.enhancer == nil {
		return composed.Text, layers
	}
	enhCtx, cancel := context.WithTimeout(ctx, o.enhancerTimeout)
	defer cancel()

	hints := make([]string, 0, len(req.StylePresets))
	for _, v := range req.StylePresets {
		if v != "" {
			hints = append(hints, v)
		}
	}
	res, err := o.enhancer.Enhance(enhCtx, enhance.EnhanceRequest{
		Prompt:     composed.Text,
		Modality:   string(req.Modality),
		StyleHints: hints,
	})
	if err != nil || res == nil || strings.TrimSpace(res.Prompt) == "" {
		return composed.Text, layers
	}
	if res.Prompt != composed.Text {
		layers = append(append([]string(nil), layers...), "enhanced:"+res.Provider)
	}
	return res.Prompt, layers
}

// decodeReferences turns data-URL or bare base64 reference payloads into
// provider conditioning images plus short notes for the prompt's reference
// clause.
func decodeReferences(raw []string) ([]*video.ReferenceImage, []string, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	refs := make([]*video.ReferenceImage, 0, len(raw))
	notes := make([]string, 0, len(raw))
	for i, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		mime := "image/png"
		payload := entry
		if strings.HasPrefix(entry, "data:") {
			rest := strings.TrimPrefix(entry, "data:")
			semi := strings.Index(rest, ";base64,")
			if semi < 0 {
				return nil, nil, fmt.Errorf("%w: reference image %d is not base64 encoded", domain.ErrInvalidRequest, i+1)
			}
			if rest[:semi] != "" {
				mime = rest[:semi]
			}
			payload = rest[semi+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reference image %d: %v", domain.ErrInvalidRequest, i+1, err)
		}
		refs = append(refs, &video.ReferenceImage{Data: data, MIME: mime})
		notes = append(notes, fmt.Sprintf("reference image %d, %s", i+1, mime))
	}
	return refs, notes, nil
}
