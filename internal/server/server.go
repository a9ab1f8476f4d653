// Package server exposes the HTTP API: status, health, metrics and the sync
// trigger.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/internal/models"
	"nightlife-navigator/internal/venuesync"
	"nightlife-navigator/pkg/config"
	"nightlife-navigator/pkg/events"
	"nightlife-navigator/pkg/health"
	"nightlife-navigator/pkg/logging"
	"nightlife-navigator/pkg/metrics"
	"nightlife-navigator/pkg/monitoring"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Syncer runs one venue sync.
type Syncer interface {
	Run(ctx context.Context) (*venuesync.Report, error)
}

// VenueReader loads one venue with its current enrichment.
type VenueReader interface {
	GetVenue(ctx context.Context, venueID string) (*models.Venue, error)
}

// Deps are the collaborators of the HTTP server. Syncer, History and Venues
// may be nil when the store or the places client is disabled.
type Deps struct {
	Config  *config.Config
	Logger  *logging.Logger
	Health  *health.HealthManager
	Metrics *metrics.Registry
	Syncer  Syncer
	History events.Store
	Venues  VenueReader
	Version string
}

type Server struct {
	deps    Deps
	log     *logging.ComponentLogger
	handler http.Handler
}

func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.Default
	}
	if d.Health == nil {
		d.Health = health.NewHealthManager(health.HealthConfig{Timeout: constants.HealthTimeoutDefault, Version: d.Version}, d.Logger)
	}
	s := &Server{deps: d, log: d.Logger.WithComponent("server")}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	cfg := s.deps.Config
	router := mux.NewRouter()
	if cfg.MetricsEnabled {
		router.Use(monitoring.Middleware(s.deps.Metrics))
	}

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	router.HandleFunc("/sync/history/{venueID}", s.handleHistory).Methods(http.MethodGet)

	if cfg.MetricsEnabled {
		router.Handle(cfg.MetricsPath, monitoring.MetricsHandler(s.deps.Metrics)).Methods(http.MethodGet)
	}
	if cfg.ProfilingEnabled {
		pprof := http.NewServeMux()
		monitoring.RegisterPprof(pprof)
		router.PathPrefix("/debug/pprof/").Handler(pprof)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}), handlers.PrintRecoveryStack(false))
	return recovery(cors(router))
}

// Handler is the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.deps.Config.Port,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", logging.String("addr", srv.Addr), logging.String("env", s.deps.Config.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

type recoveryLogger struct {
	log *logging.ComponentLogger
}

func (r recoveryLogger) Println(v ...interface{}) {
	r.log.Error("panic recovered", fmt.Errorf("%s", fmt.Sprint(v...)))
}
