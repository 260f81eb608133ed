package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/plantcheck/internal"
	"github.com/DukeRupert/plantcheck/internal/checklist"
	"github.com/DukeRupert/plantcheck/internal/handler"
	"github.com/DukeRupert/plantcheck/internal/jobs"
	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/middleware"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/DukeRupert/plantcheck/internal/service"
	"github.com/DukeRupert/plantcheck/internal/storage"
	"github.com/DukeRupert/plantcheck/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Checklist templates
	catalog, err := checklist.Load(cfg.ChecklistTemplatesPath)
	if err != nil {
		return fmt.Errorf("checklist templates failed: %w", err)
	}
	logger.Info("Checklist templates loaded", "path", cfg.ChecklistTemplatesPath)

	// Export storage
	store, err := storage.New(storage.Config{
		Provider: cfg.StorageProvider,
		Local: storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		},
		R2: storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
			Endpoint:        cfg.R2Endpoint,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize services
	clock := service.SystemClock
	equipmentService := service.NewEquipmentService(repo, logger)
	complianceService := service.NewComplianceService(repo, clock, logger)
	inspectionService := service.NewInspectionService(db, repo, catalog, clock, logger)
	maintenanceService := service.NewMaintenanceService(repo, clock, logger)
	defectService := service.NewDefectService(repo, clock, logger)
	exportService := service.NewExportService(repo, logger)

	// Initialize handlers
	equipmentHandler := handler.NewEquipmentHandler(equipmentService, complianceService, clock, logger)
	inspectionHandler := handler.NewInspectionHandler(inspectionService, clock, logger)
	workOrderHandler := handler.NewWorkOrderHandler(maintenanceService, clock, logger)
	defectHandler := handler.NewDefectHandler(defectService, logger)
	complianceHandler := handler.NewComplianceHandler(complianceService, exportService, logger)

	// Initialize middleware
	isSecure := cfg.IsProduction()
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	defer limiter.Stop()
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD are empty, /metrics is unprotected")
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Error("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Local exports are served from disk; R2 hands out its own URLs
	if cfg.StorageProvider == storage.ProviderLocal {
		files := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", files))
	}

	equipmentHandler.RegisterRoutes(mux)
	inspectionHandler.RegisterRoutes(mux)
	workOrderHandler.RegisterRoutes(mux)
	defectHandler.RegisterRoutes(mux)
	complianceHandler.RegisterRoutes(mux)

	stack := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		rateLimitMw.Limit,
		metrics.Middleware,
	)

	// ==========================================================================
	// Background work
	// ==========================================================================

	var w *worker.Worker
	if cfg.WorkerEnabled {
		w, err = worker.New(db, repo, worker.Config{
			Concurrency:             cfg.WorkerConcurrency,
			PollInterval:            cfg.WorkerPollInterval,
			JobTimeout:              cfg.WorkerJobTimeout,
			ShutdownTimeout:         30 * time.Second,
			ComplianceSweepInterval: cfg.ComplianceSweepInterval,
		}, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		w.Register(jobs.NewRecomputeComplianceHandler(complianceService, logger))
		w.Register(jobs.NewExportComplianceHandler(complianceService, store, clock, logger))
		w.Start(ctx)
	} else {
		logger.Warn("Worker disabled, compliance snapshots are only refreshed on demand")
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server failure
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		logger.Error("Server failed", "error", err)
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	stop()
	if w != nil {
		w.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
