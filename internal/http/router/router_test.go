package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/config"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/http/handler"
	"github.com/straye-as/backoffice-api/internal/http/middleware"
	"github.com/straye-as/backoffice-api/internal/http/router"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/storage"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "router-test-secret"
	testAPIKey = "router-test-key"
)

type routerEnv struct {
	handler http.Handler
	org     *domain.Organization
	audit   *middleware.AuditMiddleware
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	logger := zap.NewNop()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "backoffice-api", Environment: "development"},
		Auth:      config.AuthConfig{JWTSecret: testSecret, APIKey: testAPIKey},
		Server:    config.ServerConfig{RequestTimeout: 30},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	taxRepo := repository.NewTaxRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)

	taxService := service.NewTaxService(db, taxRepo, nil, 0, logger)
	numberingService := service.NewNumberingService(repository.NewDocumentNumberingRepository(db), logger)
	organizationService := service.NewOrganizationService(orgRepo, logger)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)
	quoteService := service.NewQuoteService(db, quoteRepo, customerRepo, vehicleRepo, productRepo, orgRepo, taxService, numberingService, logger)

	handlers := &router.Handlers{
		Tax:      handler.NewTaxHandler(taxService, logger),
		Product:  handler.NewProductHandler(service.NewProductService(productRepo, taxRepo, logger), logger),
		Customer: handler.NewCustomerHandler(service.NewCustomerService(customerRepo, logger), logger),
		Vehicle:  handler.NewVehicleHandler(service.NewVehicleService(vehicleRepo, quoteRepo, store, logger), 1, logger),
		Quote:    handler.NewQuoteHandler(quoteService, service.NewDeliveryService(repository.NewDeliveryRepository(db), quoteRepo, vehicleRepo, logger), logger),
		Invoice: handler.NewInvoiceHandler(service.NewInvoiceService(db, repository.NewInvoiceRepository(db), quoteRepo,
			customerRepo, productRepo, taxService, numberingService, logger), logger),
		Expense:  handler.NewExpenseHandler(service.NewExpenseService(repository.NewExpenseRepository(db), logger), logger),
		Settings: handler.NewSettingsHandler(organizationService, numberingService, logger),
		Audit:    handler.NewAuditHandler(auditService, logger),
		User:     handler.NewUserHandler(service.NewUserService(repository.NewUserRepository(db), logger), logger),
	}

	audit := middleware.NewAuditMiddleware(auditService, nil, logger)
	rt := router.NewRouter(
		cfg,
		logger,
		db,
		nil,
		auth.NewMiddleware(&cfg.Auth, logger),
		middleware.NewTenantMiddleware(organizationService, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		audit,
		handlers,
	)

	return &routerEnv{
		handler: rt.Setup(),
		org:     testutil.CreateOrganization(t, db, "Transports Dupont"),
		audit:   audit,
	}
}

func token(t *testing.T, orgID uuid.UUID, role domain.UserRoleType) string {
	t.Helper()
	claims := auth.Claims{
		Organization: orgID.String(),
		Role:         string(role),
		Email:        strings.ToLower(string(role)) + "@dupont.be",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *routerEnv) call(method, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	e.audit.Wait()
	return rr
}

func TestRouter_Health(t *testing.T) {
	env := newRouterEnv(t)

	rr := env.call(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	rr = env.call(http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["checks"], "database")
	assert.NotContains(t, body["checks"], "redis")

	rr = env.call(http.MethodGet, "/health/db", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_Authentication(t *testing.T) {
	env := newRouterEnv(t)

	t.Run("missing credentials", func(t *testing.T) {
		rr := env.call(http.MethodGet, "/api/v1/customers", "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown organization", func(t *testing.T) {
		rr := env.call(http.MethodGet, "/api/v1/customers", "", token(t, uuid.New(), domain.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("api key with organization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/taxes", nil)
		req.Header.Set("x-api-key", testAPIKey)
		req.Header.Set(auth.OrganizationHeader, env.org.ID.String())
		rr := httptest.NewRecorder()
		env.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	})
}

func TestRouter_RoleGuards(t *testing.T) {
	env := newRouterEnv(t)
	customer := `{"type":"B2C","firstName":"Jean","lastName":"Dupont"}`

	tests := []struct {
		name     string
		role     domain.UserRoleType
		method   string
		target   string
		body     string
		expected int
	}{
		{"read only can list", domain.RoleReadOnly, http.MethodGet, "/api/v1/customers", "", http.StatusOK},
		{"read only cannot create", domain.RoleReadOnly, http.MethodPost, "/api/v1/customers", customer, http.StatusForbidden},
		{"commercial creates customers", domain.RoleCommercial, http.MethodPost, "/api/v1/customers", customer, http.StatusCreated},
		{"commercial cannot create taxes", domain.RoleCommercial, http.MethodPost, "/api/v1/taxes", `{"name":"TVA 6%","rate":6}`, http.StatusForbidden},
		{"accounting cannot create quotes", domain.RoleAccounting, http.MethodPost, "/api/v1/quotes", `{}`, http.StatusForbidden},
		{"accounting reads expenses", domain.RoleAccounting, http.MethodGet, "/api/v1/expenses", "", http.StatusOK},
		{"commercial cannot read audit", domain.RoleCommercial, http.MethodGet, "/api/v1/audit", "", http.StatusForbidden},
		{"admin reads audit", domain.RoleAdmin, http.MethodGet, "/api/v1/audit", "", http.StatusOK},
		{"admin creates taxes", domain.RoleAdmin, http.MethodPost, "/api/v1/taxes", `{"name":"TVA 6%","rate":6}`, http.StatusCreated},
		{"commercial cannot list users", domain.RoleCommercial, http.MethodGet, "/api/v1/users", "", http.StatusForbidden},
		{"read only cannot list users", domain.RoleReadOnly, http.MethodGet, "/api/v1/users", "", http.StatusForbidden},
		{"admin lists users", domain.RoleAdmin, http.MethodGet, "/api/v1/users", "", http.StatusOK},
		{"admin creates users", domain.RoleAdmin, http.MethodPost, "/api/v1/users", `{"email":"marie@dupont.be","firstName":"Marie","lastName":"Dupont","role":"COMMERCIAL"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.call(tt.method, tt.target, tt.body, token(t, env.org.ID, tt.role))
			assert.Equal(t, tt.expected, rr.Code, rr.Body.String())
		})
	}
}

func TestRouter_WritesAreAudited(t *testing.T) {
	env := newRouterEnv(t)
	admin := token(t, env.org.ID, domain.RoleAdmin)

	rr := env.call(http.MethodPost, "/api/v1/taxes", `{"name":"TVA 6%","rate":6}`, admin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.call(http.MethodGet, "/api/v1/audit?entityType=tax", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	var page domain.PaginatedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
}
