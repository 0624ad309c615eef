package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(deps.Version)
	statsHandler := handlers.NewStatsHandler(deps.Pipeline, deps.Index, s.config.Matching.EmbeddingDim)
	recognizeHandler := handlers.NewRecognizeHandler(deps.Pipeline, deps.Profiles)
	cutoutHandler := handlers.NewCutoutHandler(deps.Pipeline)
	celebritiesHandler := handlers.NewCelebritiesHandler(deps.Profiles)

	var gal *gallery.Gallery
	if deps.Pipeline != nil {
		gal = deps.Pipeline.Gallery()
	}
	similarHandler := handlers.NewSimilarHandler(gal, deps.Index, deps.Identities)

	// Health check, also on / so load balancers need no path config
	s.router.Get("/", healthHandler.Get)
	s.router.Get("/api/v1/health", healthHandler.Get)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", statsHandler.Get)

		// Recognition
		r.Post("/recognize", recognizeHandler.Recognize)
		r.Post("/recognize/fast", recognizeHandler.Fast)
		r.Post("/cutout", cutoutHandler.Cutout)

		// Celebrity profiles
		r.Get("/celebrities", celebritiesHandler.List)
		r.Post("/celebrities", celebritiesHandler.Create)
		r.Get("/celebrities/{id}", celebritiesHandler.Get)
		r.Put("/celebrities/{id}", celebritiesHandler.Update)
		r.Delete("/celebrities/{id}", celebritiesHandler.Delete)
		r.Get("/celebrities/{id}/similar", similarHandler.Get)
	})
}
