package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/toroprop/toro-api/docs" // Swagger docs
	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/database"
	"github.com/toroprop/toro-api/internal/handlers"
	"github.com/toroprop/toro-api/internal/jobs"
	"github.com/toroprop/toro-api/internal/middleware"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
	"github.com/toroprop/toro-api/internal/storage"
	"github.com/toroprop/toro-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Toro API
// @version 1.0
// @description REST API for the Toro rental unit management system

// @contact.name API Support

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", h.Health.Index)

		// Departments
		departments := v1.Group("/departments")
		{
			departments.GET("", h.Department.Index)
			departments.GET("/occupancy", h.Department.Occupancy)
			departments.POST("", h.Department.Create)
			departments.GET("/:department_id", h.Department.Show)
			departments.PUT("/:department_id", h.Department.Update)
			departments.DELETE("/:department_id", h.Department.Delete)
		}

		// Tenants
		tenants := v1.Group("/tenants")
		{
			tenants.GET("", h.Tenant.Index)
			tenants.POST("", h.Tenant.Create)
			tenants.GET("/:tenant_id", h.Tenant.Show)
			tenants.PUT("/:tenant_id", h.Tenant.Update)
			tenants.DELETE("/:tenant_id", h.Tenant.Delete)
		}

		// Contracts
		contracts := v1.Group("/contracts")
		{
			contracts.GET("", h.Contract.Index)
			contracts.POST("", h.Contract.Create)
			contracts.GET("/:contract_id", h.Contract.Show)
			contracts.PUT("/:contract_id", h.Contract.Update)
			contracts.POST("/:contract_id/terminate", h.Contract.Terminate)
			contracts.POST("/:contract_id/expire", h.Contract.Expire)
			contracts.GET("/:contract_id/statement", h.Contract.Statement)
		}

		// Payments. Static routes first so "stats" is not matched as :payment_id
		payments := v1.Group("/payments")
		{
			payments.GET("", h.Payment.Index)
			payments.GET("/stats", h.Payment.Stats)
			payments.GET("/overdue", h.Payment.Overdue)
			payments.GET("/:payment_id", h.Payment.Show)
			payments.PUT("/:payment_id", h.Payment.Update)
			payments.POST("/:payment_id/settle", h.Payment.Settle)
			payments.POST("/:payment_id/reopen", h.Payment.Reopen)
			payments.POST("/:payment_id/receipt", h.Payment.UploadReceipt)
			payments.GET("/:payment_id/receipt", h.Payment.DownloadReceipt)
			payments.GET("/:payment_id/receipt/pdf", h.Payment.ReceiptPDF)
		}

		// Billing routines
		billing := v1.Group("/billing")
		{
			billing.POST("/generate", h.Billing.Generate)
			billing.POST("/accrue", h.Billing.Accrue)
		}

		// Reports and bulk data
		reports := v1.Group("/reports")
		{
			reports.GET("/overdue", h.Report.OverdueCSV)
			reports.GET("/collection", h.Report.CollectionCSV)
			reports.GET("/payments/export", h.Report.ExportPayments)
			reports.GET("/import/template", h.Report.ImportTemplate)
			reports.POST("/import", h.Report.Import)
		}

		// Audit trail
		v1.GET("/audit", h.Audit.Index)

		// Background jobs
		v1.GET("/jobs/status", h.Job.Status)
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Generate the current period's obligations daily. Re-runs only fill
	// gaps, so a restart never double-bills.
	worker.ScheduleEveryImmediate(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Generating monthly obligations...")
		result, err := svcs.Billing.GenerateMonthlyObligations(ctx, "")
		if err != nil {
			return err
		}
		logger.Info("[Job] Generation finished", "period", result.Period, "created", result.Created, "skipped", result.Skipped)
		return nil
	})

	// Recompute late fees hourly
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Accruing late fees...")
		result, err := svcs.Billing.AccrueLateFees(ctx, false)
		if err != nil {
			return err
		}
		logger.Info("[Job] Accrual finished", "updated", result.Updated, "total_late_fee", result.TotalLateFee)
		return nil
	})

	// Expire contracts whose end date passed
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Expiring finished contracts...")
		expired, err := svcs.Contract.ExpireDue(ctx)
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("[Job] Contracts expired", "count", expired)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
