// Package api exposes the HTTP surface of the service: video metadata,
// byte-range streaming, recommendations and completion tracking.
package api

import (
	"context"
	"net/http"

	"github.com/tubelet/tubelet/internal/config"
	"github.com/tubelet/tubelet/internal/recommend"
	"github.com/tubelet/tubelet/internal/store"
)

// MetadataStore is the read/write surface of the video catalog the API
// needs.
type MetadataStore interface {
	List(ctx context.Context) ([]store.VideoRecord, error)
	GetByID(ctx context.Context, id string) (store.VideoRecord, error)
	RecordView(ctx context.Context, id string) (store.VideoRecord, error)
}

// Recommender ranks catalog videos against a reference video.
type Recommender interface {
	Recommend(ctx context.Context, id string, limit int) ([]recommend.Recommendation, error)
}

// Streamer writes video bytes, owning the full response including errors.
type Streamer interface {
	ServeVideo(w http.ResponseWriter, r *http.Request, id string)
}

// CompletionSink records watch-completion events. May be nil-valued
// behind the interface when history tracking is disabled.
type CompletionSink interface {
	RecordCompletion(ctx context.Context, videoID string) error
}

// Server holds the handler dependencies.
type Server struct {
	store       MetadataStore
	streamer    Streamer
	recommender Recommender
	completions CompletionSink
	cfg         config.APIConfig
	version     string
}

// New creates an API server. completions may be nil; completion requests
// are then acknowledged without being recorded.
func New(st MetadataStore, streamer Streamer, rec Recommender, completions CompletionSink, cfg config.APIConfig, version string) *Server {
	return &Server{
		store:       st,
		streamer:    streamer,
		recommender: rec,
		completions: completions,
		cfg:         cfg,
		version:     version,
	}
}
