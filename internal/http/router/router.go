package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/cache"
	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/database"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/http/handler"
	"github.com/straye-as/backoffice-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/backoffice-api/docs" // Import generated swagger docs
)

// Handlers groups the resource handlers mounted under /api/v1
type Handlers struct {
	Tax      *handler.TaxHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Vehicle  *handler.VehicleHandler
	Quote    *handler.QuoteHandler
	Invoice  *handler.InvoiceHandler
	Expense  *handler.ExpenseHandler
	Settings *handler.SettingsHandler
	Audit    *handler.AuditHandler
	User     *handler.UserHandler
}

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	cache            *cache.Client
	authMiddleware   *auth.Middleware
	tenantMiddleware *middleware.TenantMiddleware
	rateLimiter      *middleware.RateLimiter
	auditMiddleware  *middleware.AuditMiddleware
	handlers         *Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	cacheClient *cache.Client,
	authMiddleware *auth.Middleware,
	tenantMiddleware *middleware.TenantMiddleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	handlers *Handlers,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		cache:            cacheClient,
		authMiddleware:   authMiddleware,
		tenantMiddleware: tenantMiddleware,
		rateLimiter:      rateLimiter,
		auditMiddleware:  auditMiddleware,
		handlers:         handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	admin := rt.authMiddleware.RequireAdmin
	sales := rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleCommercial)
	accounting := rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleAccounting)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimiddleware.Timeout(timeout))
		}
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.tenantMiddleware.Require)
		r.Use(rt.rateLimiter.Limit)
		r.Use(rt.auditMiddleware.Audit) // Audit all modifications

		// Taxes
		r.Route("/taxes", func(r chi.Router) {
			r.Get("/", h.Tax.List)
			r.Get("/{id}", h.Tax.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Tax.Create)
				r.Put("/{id}", h.Tax.Update)
				r.Delete("/{id}", h.Tax.Delete)
				r.Post("/{id}/default", h.Tax.SetDefault)
			})
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/{id}", h.Product.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(sales)
				r.Post("/", h.Product.Create)
				r.Put("/{id}", h.Product.Update)
				r.Delete("/{id}", h.Product.Delete)
			})
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.Customer.List)
			r.Get("/{id}", h.Customer.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(sales)
				r.Post("/", h.Customer.Create)
				r.Put("/{id}", h.Customer.Update)
				r.Delete("/{id}", h.Customer.Delete)
				r.Post("/{id}/addresses", h.Customer.AddAddress)
				r.Delete("/{id}/addresses/{addressId}", h.Customer.RemoveAddress)
				r.Post("/{id}/contacts", h.Customer.AddContact)
				r.Delete("/{id}/contacts/{contactId}", h.Customer.RemoveContact)
			})
		})

		// Vehicles and their documents
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", h.Vehicle.List)
			r.Get("/{id}", h.Vehicle.GetByID)
			r.Get("/{id}/availability", h.Vehicle.Availability)
			r.Get("/{id}/documents", h.Vehicle.ListDocuments)
			r.Get("/{id}/documents/{documentId}", h.Vehicle.DownloadDocument)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.Vehicle.Create)
				r.Put("/{id}", h.Vehicle.Update)
				r.Delete("/{id}", h.Vehicle.Delete)
				r.Post("/{id}/documents", h.Vehicle.UploadDocument)
				r.Delete("/{id}/documents/{documentId}", h.Vehicle.DeleteDocument)
			})
		})

		// Quotes, lines and delivery
		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", h.Quote.List)
			r.Get("/export/csv", h.Quote.ExportCSV)
			r.Get("/export/xlsx", h.Quote.ExportXLSX)
			r.Get("/{id}", h.Quote.GetByID)
			r.Get("/{id}/pdf", h.Quote.PDF)
			r.Get("/{id}/delivery", h.Quote.GetDelivery)
			r.Group(func(r chi.Router) {
				r.Use(sales)
				r.Post("/", h.Quote.Create)
				r.Put("/{id}", h.Quote.Update)
				r.Delete("/{id}", h.Quote.Delete)
				r.Patch("/{id}/status", h.Quote.UpdateStatus)
				r.Post("/{id}/duplicate", h.Quote.Duplicate)
				r.Post("/{id}/lines", h.Quote.AddLine)
				r.Put("/{id}/lines/{lineId}", h.Quote.UpdateLine)
				r.Delete("/{id}/lines/{lineId}", h.Quote.RemoveLine)
				r.Post("/{id}/delivery", h.Quote.CreateDelivery)
				r.Put("/{id}/delivery", h.Quote.UpdateDelivery)
				r.Delete("/{id}/delivery", h.Quote.DeleteDelivery)
			})
		})

		// Invoices and payments
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.Invoice.List)
			r.Get("/{id}", h.Invoice.GetByID)
			r.Get("/{id}/payments", h.Invoice.ListPayments)
			r.Group(func(r chi.Router) {
				r.Use(accounting)
				r.Post("/", h.Invoice.Create)
				r.Post("/from-quote/{quoteId}", h.Invoice.CreateFromQuote)
				r.Put("/{id}", h.Invoice.Update)
				r.Delete("/{id}", h.Invoice.Delete)
				r.Patch("/{id}/status", h.Invoice.UpdateStatus)
				r.Post("/{id}/payments", h.Invoice.AddPayment)
				r.Delete("/{id}/payments/{paymentId}", h.Invoice.RemovePayment)
			})
		})

		// Expenses and categories
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.Expense.List)
			r.Get("/categories", h.Expense.ListCategories)
			r.Get("/categories/{categoryId}", h.Expense.GetCategory)
			r.Get("/{id}", h.Expense.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(accounting)
				r.Post("/", h.Expense.Create)
				r.Put("/{id}", h.Expense.Update)
				r.Delete("/{id}", h.Expense.Delete)
				r.Patch("/{id}/status", h.Expense.UpdateStatus)
				r.Post("/categories", h.Expense.CreateCategory)
				r.Put("/categories/{categoryId}", h.Expense.UpdateCategory)
				r.Delete("/categories/{categoryId}", h.Expense.DeleteCategory)
			})
		})

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/organization", h.Settings.GetOrganization)
			r.Get("/numbering", h.Settings.ListNumbering)
			r.Get("/numbering/{type}", h.Settings.GetNumbering)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/organization", h.Settings.UpdateOrganization)
				r.Put("/numbering/{type}", h.Settings.UpsertNumbering)
				r.Delete("/numbering/{type}", h.Settings.DeleteNumbering)
			})
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.User.List)
			r.Post("/", h.User.Create)
			r.Get("/{id}", h.User.GetByID)
			r.Patch("/{id}", h.User.Update)
			r.Delete("/{id}", h.User.Delete)
		})

		// Audit logs
		r.With(admin).Get("/audit", h.Audit.List)
	})

	return r
}

// databaseHealth is the readiness probe with connection pool stats
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			"max_idle_closed":      stats.MaxIdleClosed,
			"max_lifetime_closed":  stats.MaxLifetimeClosed,
		},
	})
}

// readiness checks every dependency
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	record := func(name string, err error) {
		if err != nil {
			rt.logger.Error("Health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			return
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	record("database", database.HealthCheck(rt.db))

	if rt.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		record("redis", rt.cache.Ping(ctx))
		cancel()
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
