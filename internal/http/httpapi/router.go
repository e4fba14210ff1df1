package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Snoop111/creative-ai-studio-demo/internal/http/handlers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/middleware"
)

type RouterOptions struct {
	CORSOrigins     []string
	RateLimitPerMin int
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.Generate)
		r.Get("/{job_id}", app.Status)
	})

	r.Post("/v1/jobs/{job_id}/cancel", app.Cancel)
	r.Get("/v1/progress/{job_id}", app.Progress)

	return r
}
