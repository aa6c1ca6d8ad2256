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

	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/docs"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/cache"
	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/database"
	"github.com/straye-as/backoffice-api/internal/http/handler"
	"github.com/straye-as/backoffice-api/internal/http/middleware"
	"github.com/straye-as/backoffice-api/internal/http/router"
	"github.com/straye-as/backoffice-api/internal/jobs"
	"github.com/straye-as/backoffice-api/internal/logger"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/storage"
	"go.uber.org/zap"
)

// @title Straye Backoffice API
// @version 1.0
// @description Back-office API for quotes, rentals, deliveries, invoices and expenses
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations, combined with X-Organization-ID
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Money values are serialized as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging", "production":
		if host := os.Getenv("SWAGGER_HOST"); host != "" {
			docs.SwaggerInfo.Host = host
		}
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Redis is optional; a nil client disables caching and job locks
	cacheClient, err := cache.New(ctx, &cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		cacheClient = nil
	}

	// Initialize repositories
	orgRepo := repository.NewOrganizationRepository(db)
	taxRepo := repository.NewTaxRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	numberingRepo := repository.NewDocumentNumberingRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	organizationService := service.NewOrganizationService(orgRepo, log)
	numberingService := service.NewNumberingService(numberingRepo, log)
	taxService := service.NewTaxService(db, taxRepo, cacheClient, cfg.Redis.TaxCacheTTLDuration(), log)
	productService := service.NewProductService(productRepo, taxRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	vehicleService := service.NewVehicleService(vehicleRepo, quoteRepo, fileStorage, log)
	quoteService := service.NewQuoteService(db, quoteRepo, customerRepo, vehicleRepo, productRepo, orgRepo, taxService, numberingService, log)
	deliveryService := service.NewDeliveryService(deliveryRepo, quoteRepo, vehicleRepo, log)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, quoteRepo, customerRepo, productRepo, taxService, numberingService, log)
	expenseService := service.NewExpenseService(expenseRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	userService := service.NewUserService(userRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	tenantMiddleware := middleware.NewTenantMiddleware(organizationService, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	handlers := &router.Handlers{
		Tax:      handler.NewTaxHandler(taxService, log),
		Product:  handler.NewProductHandler(productService, log),
		Customer: handler.NewCustomerHandler(customerService, log),
		Vehicle:  handler.NewVehicleHandler(vehicleService, cfg.Storage.MaxUploadSizeMB, log),
		Quote:    handler.NewQuoteHandler(quoteService, deliveryService, log),
		Invoice:  handler.NewInvoiceHandler(invoiceService, log),
		Expense:  handler.NewExpenseHandler(expenseService, log),
		Settings: handler.NewSettingsHandler(organizationService, numberingService, log),
		Audit:    handler.NewAuditHandler(auditLogService, log),
		User:     handler.NewUserHandler(userService, log),
	}

	rt := router.NewRouter(
		cfg,
		log,
		db,
		cacheClient,
		authMiddleware,
		tenantMiddleware,
		rateLimiter,
		auditMiddleware,
		handlers,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		var locker jobs.Locker
		if cacheClient != nil {
			locker = cacheClient
		}

		if err := jobs.RegisterQuoteExpiryJob(
			scheduler,
			quoteRepo,
			locker,
			log,
			cfg.Jobs.QuoteExpirySchedule,
			cfg.Jobs.LockTTLDuration(),
		); err != nil {
			log.Error("Failed to register quote expiry job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with quote expiry job",
				zap.String("cron_expr", cfg.Jobs.QuoteExpirySchedule),
				zap.Bool("distributed_lock", locker != nil),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			stopped := scheduler.Stop()
			<-stopped.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Flush audit entries still being written
		auditMiddleware.Wait()

		if err := cacheClient.Close(); err != nil {
			log.Warn("Error closing redis connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
