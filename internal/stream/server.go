// Package stream serves video bytes over HTTP with single-range support.
package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubelet/tubelet/internal/assets"
	"github.com/tubelet/tubelet/internal/log"
	"github.com/tubelet/tubelet/internal/metrics"
)

// Options tunes how the server hands out bytes.
type Options struct {
	// RedirectSigned redirects full-body requests to a signed URL when the
	// resolved asset's backend can mint one. Range requests are always
	// served inline so the range semantics stay ours.
	RedirectSigned bool
	// SignedURLTTL is the validity window for minted URLs.
	SignedURLTTL time.Duration
}

// Server resolves a video id to an asset and writes it out, honoring a
// single Range header per request.
type Server struct {
	resolver assets.Resolver
	opts     Options
}

// New creates a stream server over resolver.
func New(resolver assets.Resolver, opts Options) *Server {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	return &Server{resolver: resolver, opts: opts}
}

// ServeVideo writes the asset for id to w. It owns the full response,
// including error bodies. HEAD requests get identical headers and no body.
func (s *Server) ServeVideo(w http.ResponseWriter, r *http.Request, id string) {
	logger := log.FromContext(r.Context()).With().Str("component", "stream").Str("video_id", id).Logger()

	asset, err := s.resolver.Resolve(r.Context(), id)
	if err != nil {
		var nf *assets.NotFoundError
		if errors.As(err, &nf) {
			metrics.IncStreamRequest(metrics.StreamOutcomeNotFound)
			logger.Debug().Strs("candidates", nf.Candidates).Msg("asset not found")
			// the body names the id and every probed location so a missing
			// file can be diagnosed from the client side
			writeError(w, http.StatusNotFound, nf.Error())
			return
		}
		metrics.IncStreamRequest(metrics.StreamOutcomeUpstreamFail)
		logger.Error().Err(err).Msg("asset resolution failed")
		writeError(w, http.StatusBadGateway, "upstream storage unavailable")
		return
	}

	size := asset.Size()
	isHead := r.Method == http.MethodHead
	rangeHeader := r.Header.Get("Range")

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentTypeFor(asset.Name()))

	if rangeHeader == "" {
		if s.opts.RedirectSigned && !isHead {
			if src, ok := asset.(assets.SignedURLSource); ok {
				u, err := src.SignedURL(r.Context(), s.opts.SignedURLTTL)
				if err == nil {
					metrics.IncStreamRequest(metrics.StreamOutcomeRedirect)
					http.Redirect(w, r, u, http.StatusFound)
					return
				}
				logger.Warn().Err(err).Msg("signed url mint failed, serving inline")
			}
		}
		s.serveFull(w, r, asset, size, isHead, logger)
		return
	}

	rng, err := ParseRange(rangeHeader, size)
	if err != nil {
		metrics.IncStreamRequest(metrics.StreamOutcomeBadRange)
		logger.Debug().Str("range", rangeHeader).Err(err).Msg("unsatisfiable range")
		w.Header().Set("Content-Range", Format416ContentRange(size))
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "requested range not satisfiable")
		return
	}
	s.servePartial(w, r, asset, rng, size, isHead, logger)
}

func (s *Server) serveFull(w http.ResponseWriter, r *http.Request, asset assets.Asset, size int64, isHead bool, logger zerolog.Logger) {
	metrics.IncStreamRequest(metrics.StreamOutcomeFull)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if isHead {
		return
	}

	rc, err := asset.Open(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("asset open failed after headers")
		return
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	metrics.AddStreamBytes(n)
	if err != nil {
		// usually the client going away mid-stream
		logger.Debug().Err(err).Int64("bytes", n).Msg("full stream ended early")
	}
}

func (s *Server) servePartial(w http.ResponseWriter, r *http.Request, asset assets.Asset, rng Range, size int64, isHead bool, logger zerolog.Logger) {
	metrics.IncStreamRequest(metrics.StreamOutcomePartial)
	w.Header().Set("Content-Range", FormatContentRange(rng, size))
	w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if isHead {
		return
	}

	rc, err := asset.Open(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("asset open failed after headers")
		return
	}
	defer rc.Close()

	if _, err := rc.Seek(rng.Start, io.SeekStart); err != nil {
		logger.Error().Err(err).Int64("start", rng.Start).Msg("seek failed")
		return
	}
	n, err := io.CopyN(w, rc, rng.Length())
	metrics.AddStreamBytes(n)
	if err != nil {
		logger.Debug().Err(err).Int64("bytes", n).Msg("partial stream ended early")
	}
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Del("Content-Length")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
