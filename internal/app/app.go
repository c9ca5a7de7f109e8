package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"mechprop/internal/config"
	apperrors "mechprop/internal/errors"
	"mechprop/internal/infrastructure"
	customMiddleware "mechprop/internal/middleware"
	"mechprop/internal/services"
	handlers "mechprop/internal/transport/http"
	"mechprop/internal/validation"
	ws "mechprop/internal/websocket"
	"mechprop/pkg/contracts"
)

const AppName = "Mechanical Property Analyzer"

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Paths           *config.Paths
	Router          *chi.Mux
	Server          *http.Server
	WebSocketHub    *ws.Hub
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
}

// NewApplication wires every component from cfg. paths locates the data,
// logs and web directories.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.WebSocketHub = ws.NewHub(a.Logger)

	metrics, err := infrastructure.NewAnalysisMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	a.AnalysisService = services.NewAnalysisService(
		services.OptionsFromConfig(a.Config.Analysis),
		metrics,
		a.WebSocketHub,
		a.Logger,
	)
	a.AnalysisService.SetExportDir(a.Config.Analysis.ExportDir)

	dataDir := ""
	if a.Paths != nil {
		dataDir = a.Paths.DataDir
		a.AnalysisService.SetArtifactDir(a.Paths.ExportsDir)
	}
	a.HealthService = services.NewHealthService(dataDir, a.WebSocketHub, a.AnalysisService, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	// These don't wrap the ResponseWriter, so the WebSocket upgrade can
	// still hijack the connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.allowedOrigins(), a.Logger)
	r.Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		if otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders); err != nil {
			a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		a.setupAPIRoutes(r, validator, errorHandler)

		webDir := ""
		if a.Paths != nil {
			webDir = a.Paths.WebDir
		}
		r.Get("/", handlers.ServeMainApp(webDir))
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, validator *customMiddleware.ValidationMiddleware, errorHandler *apperrors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(validator.ValidateRequest)
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		clientLog := handlers.NewClientLogHandler(validator, errorHandler, a.Logger)
		r.Post("/client-log", clientLog.Handle)

		dataDir := ""
		if a.Paths != nil {
			dataDir = a.Paths.DataDir
		}
		filesHandler := handlers.NewFilesHandler(dataDir, errorHandler, a.Logger)
		r.Get("/files", filesHandler.List)

		analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, validator, errorHandler, a.Logger)
		r.Mount("/", analysisHandler.Routes())
	})
}

func (a *Application) allowedOrigins() []string {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	return append(origins, a.Config.Security.AllowedOrigins...)
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
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

// Run serves until ctx is cancelled or the server fails, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup health check warnings", slog.String("warnings", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.WebSocketHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening",
			slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return errors.Join(errs...)
}

// performStartupHealthCheck checks that the working directories are
// writable. Failures are warnings: exports default to the source log's
// directory and need none of them.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	if a.Paths == nil {
		return nil
	}

	files := validation.NewFileValidator(a.Logger)
	var warnings []string
	for name, dir := range map[string]string{
		"data":    a.Paths.DataDir,
		"exports": a.Paths.ExportsDir,
		"logs":    a.Paths.LogsDir,
	} {
		if err := files.ValidateOutputDirectory(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory: %v", name, err))
		}
	}

	if !config.FileExists(a.Paths.WebDir) {
		a.Logger.InfoContext(ctx, "renderer not installed, serving status page",
			slog.String("web_dir", a.Paths.WebDir))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}
	a.Logger.InfoContext(ctx, "startup health check passed")
	return nil
}
