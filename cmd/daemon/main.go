package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubelet/tubelet/internal/api"
	"github.com/tubelet/tubelet/internal/assets"
	"github.com/tubelet/tubelet/internal/blobstore"
	"github.com/tubelet/tubelet/internal/config"
	"github.com/tubelet/tubelet/internal/daemon"
	"github.com/tubelet/tubelet/internal/history"
	tlog "github.com/tubelet/tubelet/internal/log"
	"github.com/tubelet/tubelet/internal/recommend"
	"github.com/tubelet/tubelet/internal/store"
	"github.com/tubelet/tubelet/internal/stream"
)

var (
	version   = "1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tlog.Configure(tlog.Config{
		Level:   "info",
		Service: "tubelet",
		Version: version,
	})
	logger := tlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}
	tlog.SetLevel(cfg.Logging.Level)

	if err := run(ctx, cfg, *configPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("daemon exited with error")
	}
	logger.Info().Msg("daemon stopped")
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger zerolog.Logger) error {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st := store.New(cfg.Data.Dir)
	if err := st.Init(ctx); err != nil {
		return fmt.Errorf("init metadata store: %w", err)
	}

	completions, err := history.Open(ctx, cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() {
		if err := completions.Close(); err != nil {
			logger.Warn().Err(err).Msg("history store close failed")
		}
	}()

	resolver := assets.Chain{assets.NewLocal(cfg.Media.Dir)}
	if cfg.Blob.Enabled {
		client := blobstore.New(cfg.Blob.BaseURL, cfg.Blob.Token, cfg.Blob.Timeout)
		resolver = append(resolver, assets.NewBlob(client))
		logger.Info().Str("base_url", cfg.Blob.BaseURL).Msg("blob backend enabled")
	}

	streamer := stream.New(resolver, stream.Options{
		RedirectSigned: cfg.Blob.RedirectSigned,
		SignedURLTTL:   cfg.Blob.SignedURLTTL,
	})
	engine := recommend.New(st, rand.New(rand.NewSource(time.Now().UnixNano())))

	srv := api.New(st, streamer, engine, completions, cfg.API, version)

	// SIGHUP adjusts the log level from a freshly loaded config without a
	// restart.
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reloaded, err := config.Load(configPath)
				if err != nil {
					logger.Warn().Err(err).Msg("config reload failed")
					continue
				}
				tlog.SetLevel(reloaded.Logging.Level)
				logger.Info().Str("level", reloaded.Logging.Level).Msg("log level reloaded")
			}
		}
	}()

	return daemon.New(cfg, srv.Routes(), logger).Run(ctx)
}
