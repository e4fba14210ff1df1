package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/jobs"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
)

type App struct {
	Orchestrator *jobs.Orchestrator
	Resolver     *jobs.Resolver
	Hub          *progress.Hub
	Logger       infra.Logger
}

func NewApp(orchestrator *jobs.Orchestrator, resolver *jobs.Resolver, hub *progress.Hub, logger infra.Logger) *App {
	return &App{Orchestrator: orchestrator, Resolver: resolver, Hub: hub, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
