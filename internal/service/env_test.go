package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/storage"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires every service against one in-memory database
type testEnv struct {
	ctx context.Context
	db  *gorm.DB

	org      *domain.Organization
	customer *domain.Customer
	vat21    *domain.Tax

	taxes         *service.TaxService
	numbering     *service.NumberingService
	products      *service.ProductService
	customers     *service.CustomerService
	vehicles      *service.VehicleService
	quotes        *service.QuoteService
	deliveries    *service.DeliveryService
	invoices      *service.InvoiceService
	expenses      *service.ExpenseService
	organizations *service.OrganizationService
	users         *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
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

	taxes := service.NewTaxService(db, taxRepo, nil, 0, logger)
	numbering := service.NewNumberingService(numberingRepo, logger)

	org := testutil.CreateOrganization(t, db, "Transports Dupont")

	return &testEnv{
		ctx:           context.Background(),
		db:            db,
		org:           org,
		customer:      testutil.CreateCustomer(t, db, org.ID, "Acme SPRL"),
		vat21:         testutil.CreateTax(t, db, org.ID, "TVA 21%", 21, true),
		taxes:         taxes,
		numbering:     numbering,
		products:      service.NewProductService(productRepo, taxRepo, logger),
		customers:     service.NewCustomerService(customerRepo, logger),
		vehicles:      service.NewVehicleService(vehicleRepo, quoteRepo, store, logger),
		quotes:        service.NewQuoteService(db, quoteRepo, customerRepo, vehicleRepo, productRepo, orgRepo, taxes, numbering, logger),
		deliveries:    service.NewDeliveryService(deliveryRepo, quoteRepo, vehicleRepo, logger),
		invoices:      service.NewInvoiceService(db, invoiceRepo, quoteRepo, customerRepo, productRepo, taxes, numbering, logger),
		expenses:      service.NewExpenseService(expenseRepo, logger),
		organizations: service.NewOrganizationService(orgRepo, logger),
		users:         service.NewUserService(repository.NewUserRepository(db), logger),
	}
}

// pricedLine builds a line request with an explicit price and the 21% tax
func (e *testEnv) pricedLine(description string, quantity, unitPrice, discount float64) domain.LineRequest {
	return domain.LineRequest{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   testutil.Ptr(unitPrice),
		Discount:    discount,
		TaxID:       &e.vat21.ID,
	}
}

// createSaleQuote stores a SALE quote for the default customer
func (e *testEnv) createSaleQuote(t *testing.T, lines ...domain.LineRequest) *domain.QuoteDTO {
	t.Helper()
	quote, err := e.quotes.Create(e.ctx, e.org.ID, &domain.CreateQuoteRequest{
		Type:       domain.QuoteTypeSale,
		CustomerID: e.customer.ID,
		Lines:      lines,
	})
	require.NoError(t, err)
	return quote
}

// acceptedQuote creates a SALE quote and moves it to ACCEPTED
func (e *testEnv) acceptedQuote(t *testing.T, lines ...domain.LineRequest) *domain.QuoteDTO {
	t.Helper()
	quote := e.createSaleQuote(t, lines...)
	accepted, err := e.quotes.ChangeStatus(e.ctx, e.org.ID, quote.ID, domain.QuoteStatusAccepted)
	require.NoError(t, err)
	return accepted
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2), msgAndArgs...)
}
