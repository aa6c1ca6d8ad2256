package service_test

import (
	"testing"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Records of one organization are invisible to every other organization
func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateOrganization(t, env.db, "Concurrent SA")

	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	product := testutil.CreateProduct(t, env.db, env.org.ID, "Palette", 12.5, &env.vat21.ID)
	quote := env.acceptedQuote(t, env.pricedLine("Carton", 1, 10, 0))
	invoice, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{})
	require.NoError(t, err)
	expense, err := env.expenses.Create(env.ctx, env.org.ID, &domain.CreateExpenseRequest{
		Date:     testutil.Date(2024, 3, 5),
		Supplier: "Shell",
		AmountHT: testutil.Ptr(10.0),
	})
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		_, err := env.customers.GetByID(env.ctx, other.ID, env.customer.ID)
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)

		_, err = env.taxes.GetByID(env.ctx, other.ID, env.vat21.ID)
		assert.ErrorIs(t, err, service.ErrTaxNotFound)

		_, err = env.products.GetByID(env.ctx, other.ID, product.ID)
		assert.ErrorIs(t, err, service.ErrProductNotFound)

		_, err = env.vehicles.GetByID(env.ctx, other.ID, van.ID)
		assert.ErrorIs(t, err, service.ErrVehicleNotFound)

		_, err = env.quotes.GetByID(env.ctx, other.ID, quote.ID)
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)

		_, err = env.invoices.GetByID(env.ctx, other.ID, invoice.ID)
		assert.ErrorIs(t, err, service.ErrInvoiceNotFound)

		_, err = env.expenses.GetByID(env.ctx, other.ID, expense.ID)
		assert.ErrorIs(t, err, service.ErrExpenseNotFound)
	})

	t.Run("mutations", func(t *testing.T) {
		_, err := env.quotes.ChangeStatus(env.ctx, other.ID, quote.ID, domain.QuoteStatusRejected)
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)

		_, err = env.invoices.AddPayment(env.ctx, other.ID, invoice.ID, &domain.CreatePaymentRequest{
			Amount: 1,
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, service.ErrInvoiceNotFound)

		assert.ErrorIs(t, env.expenses.Delete(env.ctx, other.ID, expense.ID), service.ErrExpenseNotFound)
		assert.ErrorIs(t, env.vehicles.Delete(env.ctx, other.ID, van.ID), service.ErrVehicleNotFound)
		assert.ErrorIs(t, env.customers.Delete(env.ctx, other.ID, env.customer.ID), service.ErrCustomerNotFound)
	})

	t.Run("quote references", func(t *testing.T) {
		_, err := env.quotes.Create(env.ctx, other.ID, &domain.CreateQuoteRequest{
			Type:       domain.QuoteTypeSale,
			CustomerID: env.customer.ID,
		})
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})

	t.Run("lists", func(t *testing.T) {
		customers, err := env.customers.List(env.ctx, other.ID, 1, 20, "", nil)
		require.NoError(t, err)
		assert.Zero(t, customers.Total)

		quotes, err := env.quotes.List(env.ctx, other.ID, &domain.QuoteFilters{}, 1, 20)
		require.NoError(t, err)
		assert.Zero(t, quotes.Total)

		invoices, err := env.invoices.List(env.ctx, other.ID, &domain.InvoiceFilters{}, 1, 20)
		require.NoError(t, err)
		assert.Zero(t, invoices.Total)

		taxes, err := env.taxes.List(env.ctx, other.ID, false)
		require.NoError(t, err)
		assert.Empty(t, taxes)
	})

	// the owner still sees everything
	_, err = env.quotes.GetByID(env.ctx, env.org.ID, quote.ID)
	assert.NoError(t, err)
}
