package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tubelet/tubelet/internal/api/middleware"
	"github.com/tubelet/tubelet/internal/log"
)

// Routes builds the full handler tree with the canonical middleware
// stack applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics())
	r.Use(log.Middleware())
	if s.cfg.RateLimitRequests > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestLimit: s.cfg.RateLimitRequests,
			WindowSize:   s.cfg.RateLimitWindow,
		}))
	}

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/videos", func(r chi.Router) {
		r.Get("/", s.handleListVideos)
		r.Route("/{videoID}", func(r chi.Router) {
			r.Get("/", s.handleGetVideo)
			r.Get("/stream", s.handleStream)
			r.Head("/stream", s.handleStream)
			r.Get("/thumbnail", s.handleThumbnail)
			r.Get("/recommendations", s.handleRecommendations)
			r.Post("/complete", s.handleComplete)
		})
	})

	return r
}
