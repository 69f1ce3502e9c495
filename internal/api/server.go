package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/transcribe-relay/internal/config"
	"github.com/snarg/transcribe-relay/internal/metrics"
	"github.com/snarg/transcribe-relay/internal/transcribe"
)

type Server struct {
	http       *http.Server
	transcribe *TranscribeHandler
	log        zerolog.Logger
}

// NewRouter wires the HTTP surface: CORS preflight, the transcription relay,
// health, metrics and static assets. Unmatched methods get 405.
func NewRouter(cfg *config.Config, transcribeHandler *TranscribeHandler, health *HealthHandler, log zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(metrics.InstrumentHandler)
	r.Use(Recoverer)
	r.Use(CORS)

	transcribeHandler.Routes(r)
	r.Get("/healthz", health.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/*", StaticHandler(cfg.StaticDir))

	notAllowed := func(w http.ResponseWriter, r *http.Request) {
		WriteText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
	r.MethodNotAllowed(notAllowed)
	r.NotFound(notAllowed)

	return r
}

func NewServer(cfg *config.Config, provider transcribe.Provider, version string, startTime time.Time, log zerolog.Logger) *Server {
	th := NewTranscribeHandler(cfg, provider, log)
	health := NewHealthHandler(provider, cfg.APIKey() != "", version, startTime)

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr(),
			Handler:      NewRouter(cfg, th, health, log),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		transcribe: th,
		log:        log,
	}
}

// Stats exposes relay state to the metrics collector.
func (s *Server) Stats() metrics.RelayStats {
	return s.transcribe
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
