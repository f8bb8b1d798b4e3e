package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"niftycli/internal/analytics"
	"niftycli/internal/config"
	apierrors "niftycli/internal/errors"
	"niftycli/internal/infrastructure"
	customMiddleware "niftycli/internal/middleware"
	"niftycli/internal/services"
	handlers "niftycli/internal/transport/http"
	"niftycli/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Nifty 50 Dashboard"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Pipeline      *services.Pipeline
	Analysis      *services.AnalysisService
	Health        *services.HealthService
	Scheduler     *cron.Cron
	errorHandler  *apierrors.ErrorHandler
}

// NewApplication loads configuration and logging and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, infrastructure.DefaultOTelConfig())
}

// New builds the application from an explicit configuration. otelCfg may
// disable exporters for tests.
func New(cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Paths.Source),
		slog.String("records_dir", cfg.Paths.RecordsDir),
		slog.String("series_dir", cfg.Paths.SeriesDir),
		slog.String("sector_file", cfg.Paths.SectorFile))

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices wires the pipeline, the analysis service and the scheduler
func (a *Application) initializeServices() error {
	a.Pipeline = services.NewPipeline(a.Config, a.Metrics, a.Logger)

	memo := analytics.NewMemo(analytics.NewEngine(a.Logger), a.Config.Analysis.CacheTTL, a.Metrics)
	a.Analysis = services.NewAnalysisService(a.Config, a.Pipeline, memo, a.Metrics, a.Logger)
	a.Health = services.NewHealthService(contracts.Version, a.Config.Paths, a.Analysis, a.Logger)

	if spec := a.Config.Analysis.RefreshCron; spec != "" {
		a.Scheduler = cron.New()
		if _, err := a.Scheduler.AddFunc(spec, a.scheduledRefresh); err != nil {
			return fmt.Errorf("register refresh schedule %q: %w", spec, err)
		}
	}
	return nil
}

// scheduledRefresh is the cron job. A refresh already in flight is not an error.
func (a *Application) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.RequestTimeout)
	defer cancel()

	if _, err := a.Analysis.Refresh(ctx); err != nil {
		if errors.Is(err, services.ErrRefreshRunning) {
			a.Logger.InfoContext(ctx, "Scheduled refresh skipped, refresh already running")
			return
		}
		a.Logger.ErrorContext(ctx, "Scheduled refresh failed", slog.String("error", err.Error()))
	}
}

// setupRouter configures the chi router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Prometheus scrapes outside the request middleware
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			ExposedHeaders: []string{customMiddleware.RequestIDHeader},
			Logger:         a.Logger,
		}))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboard := handlers.NewDashboardHandler(a.Analysis,
			a.Config.Analysis.TopN, a.Config.Analysis.CumulativeN,
			a.Logger, a.errorHandler)
		dashboard.RegisterRoutes(r)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// InitialRefresh computes the first snapshot. Missing data is logged and
// leaves the dashboard answering 503 until a later refresh succeeds.
func (a *Application) InitialRefresh(ctx context.Context) error {
	snap, err := a.Analysis.Refresh(ctx)
	if err != nil {
		if apierrors.IsType(err, apierrors.ErrTypeNoDataAvailable) {
			a.Logger.WarnContext(ctx, "No data available at startup",
				slog.String("error", err.Error()))
			return nil
		}
		return fmt.Errorf("initial refresh: %w", err)
	}
	a.Logger.InfoContext(ctx, "Initial snapshot ready",
		slog.String("run_id", snap.RunID),
		slog.Int("symbols", snap.Result.TotalSymbols))
	return nil
}

// Start serves until ctx is cancelled or the server fails, then shuts down
func (a *Application) Start(ctx context.Context) error {
	if err := a.InitialRefresh(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.Scheduler != nil {
		a.Scheduler.Start()
		a.Logger.InfoContext(gctx, "Refresh scheduler started",
			slog.String("schedule", a.Config.Analysis.RefreshCron))
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.Scheduler != nil {
		// Wait for a running job before closing the server
		select {
		case <-a.Scheduler.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err := a.Start(ctx)
	a.Logger.Info("Application exited", slog.Duration("uptime", time.Since(start)))
	return err
}
