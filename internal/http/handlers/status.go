package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
)

func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	view, err := a.Resolver.Resolve(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("status resolution failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve job status")
		return
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	switch err := a.Orchestrator.Cancel(r.Context(), jobID); {
	case err == nil:
		a.json(w, http.StatusAccepted, map[string]string{
			"job_id": jobID,
			"status": "cancelling",
		})
	case errors.Is(err, domain.ErrJobNotFound):
		a.error(w, http.StatusNotFound, "not_found", "job not found")
	case errors.Is(err, domain.ErrJobTerminal):
		a.error(w, http.StatusConflict, "conflict", "job already finished")
	default:
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("cancel failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel job")
	}
}
