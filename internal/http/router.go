package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/http/handlers"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.Identity,
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

		r.Post("/generate", app.Generate)
		r.Post("/preview", app.Preview)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", app.ListJobs)
			r.Get("/{id}", app.GetJob)
			r.Get("/{id}/details", app.GetJobDetails)
			r.Get("/{id}/download", app.DownloadJob)
			r.Post("/{id}/cancel", app.CancelJob)
			r.Delete("/{id}", app.DeleteJob)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", app.ListTemplates)
			r.Post("/", app.CreateTemplate)
			r.Get("/{id}", app.GetTemplate)
			r.Delete("/{id}", app.DeleteTemplate)
		})

		r.Get("/data-types", app.DataTypes)
		r.Get("/stats", app.Stats)
	})

	return r
}
