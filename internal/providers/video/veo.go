package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// VeoOptions configures the Veo client.
type VeoOptions struct {
	APIKey string
	Model  string
	Logger infra.Logger
}

// Veo drives Google's Veo models through the genai SDK. Generation is a
// long-running operation: Submit starts it, Poll re-reads it by name, Fetch
// downloads the finished video through the Files API.
type Veo struct {
	client *genai.Client
	model  string
	logger infra.Logger
}

// NewVeo constructs the client. The API key must be present; availability
// gating happens upstream in the provider registry.
func NewVeo(ctx context.Context, opts VeoOptions) (*Veo, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("veo: api key is required")
	}
	model := opts.Model
	if model == "" {
		model = "veo-3.0-generate-preview"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("veo: create genai client: %w", err)
	}
	return &Veo{client: client, model: model, logger: opts.Logger}, nil
}

func (v *Veo) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	cfg := &genai.GenerateVideosConfig{
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    req.AspectRatio,
	}

	var image *genai.Image
	if req.Reference != nil {
		image = &genai.Image{
			ImageBytes: req.Reference.Data,
			MIMEType:   req.Reference.MIME,
		}
	}

	op, err := v.client.Models.GenerateVideos(ctx, v.model, req.Prompt, image, cfg)
	if err != nil {
		return "", fmt.Errorf("veo: generate videos: %w", err)
	}
	v.logger.Info().
		Str("request_id", req.RequestID).
		Str("operation", op.Name).
		Msg("veo: operation started")
	return op.Name, nil
}

func (v *Veo) Poll(ctx context.Context, handle string) (PollStatus, error) {
	op := &genai.GenerateVideosOperation{Name: handle}
	op, err := v.client.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return PollStatus{}, fmt.Errorf("veo: get operation: %w", err)
	}
	if !op.Done {
		return PollStatus{}, nil
	}
	if op.Error != nil {
		return PollStatus{Done: true, Failed: true, Message: fmt.Sprintf("%v", op.Error)}, nil
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return PollStatus{Done: true, Failed: true, Message: "operation finished without videos"}, nil
	}

	generated := op.Response.GeneratedVideos[0].Video
	if generated == nil {
		return PollStatus{Done: true, Failed: true, Message: "operation finished without video payload"}, nil
	}
	if len(generated.VideoBytes) > 0 {
		return PollStatus{Done: true, Data: generated.VideoBytes}, nil
	}
	return PollStatus{Done: true, ResultRef: generated.URI}, nil
}

func (v *Veo) Fetch(ctx context.Context, resultRef string) ([]byte, error) {
	data, err := v.client.Files.Download(ctx, &genai.Video{URI: resultRef}, nil)
	if err != nil {
		return nil, fmt.Errorf("veo: download video: %w", err)
	}
	return data, nil
}

var _ Generator = (*Veo)(nil)
