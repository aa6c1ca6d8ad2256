package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/http/handler"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/storage"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type handlerEnv struct {
	db    *gorm.DB
	org   *domain.Organization
	vat21 *domain.Tax

	auditService *service.AuditLogService

	taxes     *handler.TaxHandler
	products  *handler.ProductHandler
	customers *handler.CustomerHandler
	vehicles  *handler.VehicleHandler
	quotes    *handler.QuoteHandler
	invoices  *handler.InvoiceHandler
	expenses  *handler.ExpenseHandler
	settings  *handler.SettingsHandler
	audit     *handler.AuditHandler
	users     *handler.UserHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	taxRepo := repository.NewTaxRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	numberingRepo := repository.NewDocumentNumberingRepository(db)

	taxService := service.NewTaxService(db, taxRepo, nil, 0, logger)
	numberingService := service.NewNumberingService(numberingRepo, logger)
	organizationService := service.NewOrganizationService(orgRepo, logger)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)

	quoteService := service.NewQuoteService(db, quoteRepo, customerRepo, vehicleRepo, productRepo, orgRepo, taxService, numberingService, logger)
	deliveryService := service.NewDeliveryService(deliveryRepo, quoteRepo, vehicleRepo, logger)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, quoteRepo, customerRepo, productRepo, taxService, numberingService, logger)

	org := testutil.CreateOrganization(t, db, "Transports Dupont")

	return &handlerEnv{
		db:           db,
		org:          org,
		vat21:        testutil.CreateTax(t, db, org.ID, "TVA 21%", 21, true),
		auditService: auditService,
		taxes:        handler.NewTaxHandler(taxService, logger),
		products:     handler.NewProductHandler(service.NewProductService(productRepo, taxRepo, logger), logger),
		customers:    handler.NewCustomerHandler(service.NewCustomerService(customerRepo, logger), logger),
		vehicles:     handler.NewVehicleHandler(service.NewVehicleService(vehicleRepo, quoteRepo, store, logger), 1, logger),
		quotes:       handler.NewQuoteHandler(quoteService, deliveryService, logger),
		invoices:     handler.NewInvoiceHandler(invoiceService, logger),
		expenses:     handler.NewExpenseHandler(service.NewExpenseService(expenseRepo, logger), logger),
		settings:     handler.NewSettingsHandler(organizationService, numberingService, logger),
		audit:        handler.NewAuditHandler(auditService, logger),
		users:        handler.NewUserHandler(service.NewUserService(repository.NewUserRepository(db), logger), logger),
	}
}

// userContext authenticates requests as an admin of the environment's organization
func (e *handlerEnv) userContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:         uuid.New(),
		OrganizationID: e.org.ID,
		Role:           domain.RoleAdmin,
		Email:          "admin@dupont.be",
		DisplayName:    "Admin Dupont",
	})
}

// request builds an authenticated request. Params populate the chi route context.
func (e *handlerEnv) request(t *testing.T, method, target string, body interface{}, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return withURLParams(req.WithContext(e.userContext()), params)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
