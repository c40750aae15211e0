package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appcontrib "github.com/preston-bernstein/contrib-widget-service/internal/app/contributions"
	appwidgets "github.com/preston-bernstein/contrib-widget-service/internal/app/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/config"
	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
	httpserver "github.com/preston-bernstein/contrib-widget-service/internal/http"
	"github.com/preston-bernstein/contrib-widget-service/internal/http/handlers"
	"github.com/preston-bernstein/contrib-widget-service/internal/http/middleware"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
	"github.com/preston-bernstein/contrib-widget-service/internal/poller"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/render"
	"github.com/preston-bernstein/contrib-widget-service/internal/store"
	"github.com/preston-bernstein/contrib-widget-service/internal/token"
)

var metricsSetup = metrics.Setup

// syncSlackDays widens the stored window past the widest widget so week-aligned layouts stay covered.
const syncSlackDays = 7

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	calendars     *appcontrib.Service
	widgets       *appwidgets.Service
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
}

// New constructs a server with default provider and poller wiring.
// Grid, color scale and timezone misconfiguration is reported here rather than at request time.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServer(cfg, logger, nil, nil)
}

func newServer(cfg config.Config, logger *slog.Logger, provider providers.ContributionProvider, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	loc, err := time.LoadLocation(cfg.Widget.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load widget timezone %q: %w", cfg.Widget.Timezone, err)
	}

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	tokens := token.NewProvider(cfg.Resources, logger)

	if provider == nil {
		provider = newProviderFactory(logger, recorder, tokens).build(cfg)
	} else {
		provider = providers.NewRetryingProvider(provider, logger, recorder, normalizeProviderName(cfg.Provider, provider), 0, 0)
	}

	memoryStore := store.NewMemoryStore()
	opts := append(buildSnapshots(cfg, logger).options(),
		appcontrib.WithWindowDays(syncWindowDays(cfg.Widget.GridSize)),
	)
	if cfg.GitHub.Username != "" {
		opts = append(opts, appcontrib.WithLogins(cfg.GitHub.Username))
	}
	calendars := appcontrib.NewService(provider, memoryStore, logger, recorder, opts...)

	widgetSvc, err := appwidgets.NewService(calendars, appwidgets.Config{
		GridSize:   cfg.Widget.GridSize,
		Scale:      cfg.Widget.ColorScale,
		Layout:     cfg.Widget.Layout,
		DeepLink:   cfg.Widget.DeepLink,
		Location:   loc,
		StaleAfter: cfg.Widget.StaleAfter,
	}, logger, recorder)
	if err != nil {
		releaseOnError(metricsShutdown)
		return nil, fmt.Errorf("configure widgets: %w", err)
	}

	renderer, err := render.NewRenderer(render.Config{
		Background: cfg.Widget.Background,
		CacheSize:  cfg.Widget.CacheSize,
	}, recorder)
	if err != nil {
		releaseOnError(metricsShutdown)
		return nil, fmt.Errorf("configure renderer: %w", err)
	}

	plr := poller.New(calendars, logger, recorder, cfg.PollInterval, poller.WithLocation(loc))
	httpSrv := buildHTTPServer(cfg, calendars, widgetSvc, renderer, tokens, logger, recorder, plr)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memoryStore,
		calendars:     calendars,
		widgets:       widgetSvc,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
	}, nil
}

// syncWindowDays covers the widest widget and the base grid, whichever reaches further back.
func syncWindowDays(gridSize int) int {
	return max(domainwidgets.MaxDisplayDays(), gridSize) + syncSlackDays
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, calendars *appcontrib.Service, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		calendars:  calendars,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func releaseOnError(metricsShutdown func(context.Context) error) {
	if metricsShutdown != nil {
		_ = metricsShutdown(context.Background())
	}
}

func buildHTTPServer(
	cfg config.Config,
	calendars *appcontrib.Service,
	widgetSvc *appwidgets.Service,
	renderer *render.Renderer,
	tokens *token.Provider,
	logger *slog.Logger,
	recorder *metrics.Recorder,
	plr Poller,
) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(calendars, widgetSvc, renderer, logger, statusFn)
	var admin *handlers.AdminHandler
	if cfg.AdminToken != "" {
		admin = handlers.NewAdminHandler(plr, tokens, cfg.AdminToken, logger)
	}
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Handler:     handler,
		Admin:       admin,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the poller and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.poller.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop poller", "error", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
