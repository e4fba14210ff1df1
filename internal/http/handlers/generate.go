package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
)

type generateRequest struct {
	Modality        string            `json:"modality"`
	Provider        string            `json:"provider"`
	Client          string            `json:"client"`
	Prompt          string            `json:"prompt"`
	VFX             string            `json:"vfx"`
	CameraMovement  string            `json:"camera_movement"`
	StylePresets    map[string]string `json:"style_presets"`
	ReferenceImages []string          `json:"reference_images"`
	DurationSeconds int               `json:"duration_seconds"`
	Quantity        int               `json:"quantity"`
	Quality         string            `json:"quality"`
	AspectRatio     string            `json:"aspect_ratio"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	modality, err := domain.ParseModality(req.Modality)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	receipt, err := a.Orchestrator.Submit(r.Context(), domain.GenerationRequest{
		Modality:        modality,
		Provider:        req.Provider,
		ClientID:        req.Client,
		Prompt:          req.Prompt,
		VFX:             req.VFX,
		CameraMovement:  req.CameraMovement,
		StylePresets:    req.StylePresets,
		ReferenceImages: req.ReferenceImages,
		DurationSeconds: req.DurationSeconds,
		Quantity:        req.Quantity,
		Quality:         req.Quality,
		AspectRatio:     req.AspectRatio,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownProvider), errors.Is(err, domain.ErrUnknownTemplate):
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, domain.ErrProviderUnavailable):
			a.error(w, http.StatusServiceUnavailable, "provider_unavailable", err.Error())
		default:
			a.Logger.Error().Err(err).Msg("generation submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to create generation job")
		}
		return
	}
	a.json(w, http.StatusAccepted, receipt)
}
