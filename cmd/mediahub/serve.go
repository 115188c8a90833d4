package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediahub/mediahub/internal/api"
	"github.com/mediahub/mediahub/internal/catalog"
	"github.com/mediahub/mediahub/internal/config"
	"github.com/mediahub/mediahub/internal/logger"
	"github.com/mediahub/mediahub/internal/session"
	"github.com/mediahub/mediahub/internal/websocket"
)

const portAttempts = 10

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: cfg.Logging.BufferSize,
	})
	defer log.Close()

	log.Info().Str("version", config.Version).Msg("starting MediaHub")

	seed := catalog.DefaultSeed
	if cfg.Catalog.SeedFile != "" {
		items, err := catalog.LoadSeedFile(cfg.Catalog.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		log.Info().Str("path", cfg.Catalog.SeedFile).Int("items", len(items)).Msg("loaded catalog seed")
		seed = func() []catalog.Item { return items }
	}

	hub := websocket.NewHub(log.Logger)
	go hub.Run()
	defer hub.Stop()

	sessions, err := session.NewManager(session.Config{
		Secret:          cfg.Session.Secret,
		IdleTimeout:     cfg.Session.IdleTimeout,
		SweepInterval:   cfg.Session.SweepInterval,
		CreatesPerIPMin: cfg.Session.CreatesPerIPMin,
	}, seed, hub, log.Logger)
	if err != nil {
		return err
	}
	if err := sessions.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sessions.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to stop session sweeper")
		}
	}()

	server, err := api.NewServer(cfg, sessions, hub, log, log.Logger)
	if err != nil {
		return err
	}

	configuredPort := cfg.Server.Port
	port, err := config.FindAvailablePort(cfg.Server.Host, configuredPort, portAttempts)
	if err != nil {
		return err
	}
	if port != configuredPort {
		log.Warn().
			Int("configuredPort", configuredPort).
			Int("actualPort", port).
			Msg("configured port in use, using alternative port")
		cfg.Server.Port = port
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}
