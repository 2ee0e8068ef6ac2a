// Package api serves the journal and analytics over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/capture"
	"github.com/blackwell-systems/mindlens/internal/store"
)

// NewRouter builds the HTTP handler tree.
func NewRouter(st store.Store, engine *analyzer.Engine, rec *capture.Recorder, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(log))

	h := NewHandlers(st, engine, rec, log)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(UserMiddleware)
		r.Use(JSONContentType)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.CreateEntry)
			r.Get("/", h.ListEntries)
			r.Get("/{id}", h.GetEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/distribution", h.Distribution)
			r.Get("/mood", h.MoodTrend)
			r.Get("/weekly", h.Weekly)
			r.Get("/streak", h.Streak)
			r.Get("/patterns", h.Patterns)
			r.Get("/words", h.Words)
			r.Get("/stats", h.Stats)
			r.Get("/report", h.Report)
		})

		r.Get("/insights", h.Insights)
		r.Get("/history", h.History)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)
	})

	return r
}
