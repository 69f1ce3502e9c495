package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/snarg/transcribe-relay/internal/api"
	"github.com/snarg/transcribe-relay/internal/config"
	"github.com/snarg/transcribe-relay/internal/metrics"
	"github.com/snarg/transcribe-relay/internal/transcribe"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var overrides config.Overrides

	rootCmd := &cobra.Command{
		Use:           "transcribe-relay",
		Short:         "Serve the recorder front end and relay audio to a speech-to-text provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(overrides)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flags.StringVar(&overrides.Port, "port", "", "listen port (overrides PORT)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.StringVar(&overrides.StaticDir, "static-dir", "", "asset root (overrides STATIC_DIR)")
	flags.StringVar(&overrides.Provider, "provider", "", "gemini, openai or elevenlabs (overrides TRANSCRIBE_PROVIDER)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	return rootCmd
}

func run(overrides config.Overrides) error {
	startTime := time.Now()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Error().Err(err).Msg("failed to load config")
		return err
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("transcribe-relay starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider
	opts := transcribe.Options{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey(),
		Prompt:   cfg.Prompt,
		Timeout:  cfg.TranscribeTimeout,
	}
	opts.BaseURL, opts.Model = cfg.ProviderEndpoint()
	provider, err := transcribe.NewProvider(opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to create transcription provider")
		return err
	}
	keyConfigured := cfg.APIKey() != ""
	log.Info().Str("provider", provider.Name()).Str("model", provider.Model()).Msg("transcription provider configured")
	if !keyConfigured {
		log.Warn().Str("provider", provider.Name()).Msg("API key not set; transcription requests will fail until it is configured")
	}

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, provider, version, startTime, httpLog)
	prometheus.MustRegister(metrics.NewCollector(srv.Stats(), provider.Name(), provider.Model(), keyConfigured))

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("transcribe-relay stopped")
	return serveErr
}
