// Package daemon owns the long-lived runtime: the API listener, the
// optional metrics listener and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tubelet/tubelet/internal/config"
)

// Daemon runs the HTTP servers until its context is cancelled.
type Daemon struct {
	cfg     *config.Config
	handler http.Handler
	logger  zerolog.Logger
}

// New creates a daemon serving handler under cfg.
func New(cfg *config.Config, handler http.Handler, logger zerolog.Logger) *Daemon {
	return &Daemon{cfg: cfg, handler: handler, logger: logger}
}

// Run blocks until ctx is cancelled or a server fails. On cancellation
// both listeners are drained within the configured shutdown timeout.
func (d *Daemon) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	apiServer := &http.Server{
		Addr:         d.cfg.Server.ListenAddr,
		Handler:      d.handler,
		ReadTimeout:  d.cfg.Server.ReadTimeout,
		WriteTimeout: d.cfg.Server.WriteTimeout,
	}
	g.Go(func() error {
		d.logger.Info().
			Str("event", "api.server.listening").
			Str("addr", apiServer.Addr).
			Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.Server.ShutdownTimeout)
		defer cancel()
		d.logger.Info().Str("event", "api.server.stopping").Msg("draining API server")
		return apiServer.Shutdown(shutdownCtx)
	})

	if d.cfg.Metrics.Enabled {
		metricsServer := &http.Server{
			Addr:    d.cfg.Metrics.Addr,
			Handler: metricsHandler(),
		}
		g.Go(func() error {
			d.logger.Info().
				Str("event", "metrics.server.listening").
				Str("addr", metricsServer.Addr).
				Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.Server.ShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
