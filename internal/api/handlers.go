package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tubelet/tubelet/internal/log"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Video Streaming API",
		"version": s.version,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "metadata store not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// handleGetVideo returns one record and counts the request as a view.
func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")
	rec, err := s.store.RecordView(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.streamer.ServeVideo(w, r, chi.URLParam(r, "videoID"))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")
	writeJSON(w, http.StatusOK, map[string]string{
		"thumbnail": fmt.Sprintf("/placeholder-thumbnail-%s.jpg", id),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")

	limit := s.cfg.DefaultRecommendations
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}
	if s.cfg.MaxRecommendations > 0 && limit > s.cfg.MaxRecommendations {
		limit = s.cfg.MaxRecommendations
	}

	recs, err := s.recommender.Recommend(r.Context(), id, limit)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")
	if _, err := s.store.GetByID(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}

	if s.completions != nil {
		if err := s.completions.RecordCompletion(r.Context(), id); err != nil {
			// the acknowledgment matters more than the analytics row
			l := log.FromContext(r.Context())
			l.Warn().Err(err).
				Str("video_id", id).Msg("completion not recorded")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "completed",
		"video_id": id,
	})
}
