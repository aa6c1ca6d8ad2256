package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_CreateFromAcceptedQuote(t *testing.T) {
	env := newTestEnv(t)
	quote := env.acceptedQuote(t,
		domain.LineRequest{IsSection: true, Description: "Fournitures"},
		env.pricedLine("Carton", 3, 19.99, 10),
	)

	invoice, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{
		DueDate:      testutil.Ptr(testutil.Date(2024, 3, 1)),
		PaymentTerms: "30 jours fin de mois",
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", invoice.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.Equal(t, quote.Number, invoice.QuoteNumber)
	assert.Equal(t, quote.CustomerID, invoice.CustomerID)
	assert.Equal(t, "30 jours fin de mois", invoice.PaymentTerms)

	assert.True(t, quote.Subtotal.Equal(invoice.Subtotal))
	assert.True(t, quote.DiscountAmount.Equal(invoice.DiscountAmount))
	assert.True(t, quote.TaxAmount.Equal(invoice.TaxAmount))
	assert.True(t, quote.Total.Equal(invoice.Total))
	assert.True(t, invoice.PaidAmount.IsZero())

	require.Len(t, invoice.Lines, len(quote.Lines))
	for i := range quote.Lines {
		assert.Equal(t, quote.Lines[i].Description, invoice.Lines[i].Description)
		assert.Equal(t, quote.Lines[i].IsSection, invoice.Lines[i].IsSection)
		assert.True(t, quote.Lines[i].Total.Equal(invoice.Lines[i].Total))
	}
}

func TestInvoiceService_CreateFromQuoteRequiresAccepted(t *testing.T) {
	env := newTestEnv(t)
	quote := env.createSaleQuote(t, env.pricedLine("Carton", 1, 10, 0))

	_, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{})
	assert.ErrorIs(t, err, service.ErrQuoteNotAccepted)
	assert.ErrorIs(t, err, service.ErrInvalidState)

	// no number was consumed
	_, err = env.numbering.Get(env.ctx, env.org.ID, domain.DocumentTypeInvoice)
	assert.ErrorIs(t, err, service.ErrNumberingNotFound)

	_, err = env.invoices.CreateFromQuote(env.ctx, env.org.ID, uuid.New(), &domain.CreateInvoiceFromQuoteRequest{})
	assert.ErrorIs(t, err, service.ErrQuoteNotFound)
}

func TestInvoiceService_CreateStandalone(t *testing.T) {
	env := newTestEnv(t)

	invoice, err := env.invoices.Create(env.ctx, env.org.ID, &domain.CreateInvoiceRequest{
		CustomerID: env.customer.ID,
		Lines: []domain.LineRequest{
			env.pricedLine("Transport", 1, 100, 0),
			env.pricedLine("Manutention", 2, 25, 20),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", invoice.Number)
	assert.Nil(t, invoice.QuoteID)
	require.Len(t, invoice.Lines, 2)
	assertMoney(t, "140.00", invoice.Subtotal)
	assertMoney(t, "10.00", invoice.DiscountAmount)
	assertMoney(t, "29.40", invoice.TaxAmount)
	assertMoney(t, "169.40", invoice.Total)
	assertMoney(t, "169.40", invoice.Balance)
}

func TestInvoiceService_PaymentsDriveStatus(t *testing.T) {
	env := newTestEnv(t)
	invoice, err := env.invoices.Create(env.ctx, env.org.ID, &domain.CreateInvoiceRequest{
		CustomerID: env.customer.ID,
		Lines: []domain.LineRequest{{
			Description: "Prestation",
			Quantity:    1,
			UnitPrice:   testutil.Ptr(100.0),
		}},
	})
	require.NoError(t, err)
	assertMoney(t, "100.00", invoice.Total)

	invoice, err = env.invoices.UpdateStatus(env.ctx, env.org.ID, invoice.ID, domain.InvoiceStatusSent)
	require.NoError(t, err)

	invoice, err = env.invoices.AddPayment(env.ctx, env.org.ID, invoice.ID, &domain.CreatePaymentRequest{
		Amount: 40,
		Method: domain.PaymentMethodTransfer,
		Date:   testutil.Ptr(testutil.Date(2024, 2, 1)),
	})
	require.NoError(t, err)
	assertMoney(t, "40.00", invoice.PaidAmount)
	assert.Equal(t, domain.InvoiceStatusPartial, invoice.Status)

	invoice, err = env.invoices.AddPayment(env.ctx, env.org.ID, invoice.ID, &domain.CreatePaymentRequest{
		Amount: 60,
		Method: domain.PaymentMethodCard,
		Date:   testutil.Ptr(testutil.Date(2024, 2, 10)),
	})
	require.NoError(t, err)
	assertMoney(t, "100.00", invoice.PaidAmount)
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	assertMoney(t, "0.00", invoice.Balance)

	payments, err := env.invoices.ListPayments(env.ctx, env.org.ID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	// newest first
	assertMoney(t, "60.00", payments[0].Amount)
	assertMoney(t, "40.00", payments[1].Amount)

	invoice, err = env.invoices.RemovePayment(env.ctx, env.org.ID, invoice.ID, payments[0].ID)
	require.NoError(t, err)
	assertMoney(t, "40.00", invoice.PaidAmount)
	assert.Equal(t, domain.InvoiceStatusPartial, invoice.Status)

	_, err = env.invoices.RemovePayment(env.ctx, env.org.ID, invoice.ID, payments[0].ID)
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}

func TestInvoiceService_CancelledInvoiceKeepsStatusOnPayment(t *testing.T) {
	env := newTestEnv(t)
	quote := env.acceptedQuote(t, env.pricedLine("Carton", 1, 10, 0))
	invoice, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{})
	require.NoError(t, err)

	_, err = env.invoices.UpdateStatus(env.ctx, env.org.ID, invoice.ID, domain.InvoiceStatusCancelled)
	require.NoError(t, err)

	invoice, err = env.invoices.AddPayment(env.ctx, env.org.ID, invoice.ID, &domain.CreatePaymentRequest{
		Amount: 5,
		Method: domain.PaymentMethodCash,
	})
	require.NoError(t, err)
	assertMoney(t, "5.00", invoice.PaidAmount)
	assert.Equal(t, domain.InvoiceStatusCancelled, invoice.Status)
	require.Len(t, invoice.Payments, 1)

	invoice, err = env.invoices.AddPayment(env.ctx, env.org.ID, invoice.ID, &domain.CreatePaymentRequest{
		Amount: 7.1,
		Method: domain.PaymentMethodCash,
	})
	require.NoError(t, err)
	assertMoney(t, "12.10", invoice.PaidAmount)
	assert.Equal(t, domain.InvoiceStatusCancelled, invoice.Status)
}

func TestInvoiceService_PaymentDateDefaultsToNow(t *testing.T) {
	env := newTestEnv(t)
	quote := env.acceptedQuote(t, env.pricedLine("Carton", 1, 10, 0))
	invoice, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{})
	require.NoError(t, err)

	invoice, err = env.invoices.AddPayment(env.ctx, env.org.ID, invoice.ID, &domain.CreatePaymentRequest{
		Amount: 5,
		Method: domain.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Len(t, invoice.Payments, 1)
	assert.NotEmpty(t, invoice.Payments[0].Date)
}

func TestInvoiceService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	quote := env.acceptedQuote(t, env.pricedLine("Carton", 1, 10, 0))
	invoice, err := env.invoices.CreateFromQuote(env.ctx, env.org.ID, quote.ID, &domain.CreateInvoiceFromQuoteRequest{})
	require.NoError(t, err)

	updated, err := env.invoices.Update(env.ctx, env.org.ID, invoice.ID, &domain.UpdateInvoiceRequest{
		DueDate: testutil.Ptr(testutil.Date(2024, 4, 30)),
		Notes:   "Merci",
	})
	require.NoError(t, err)
	assert.Equal(t, "Merci", updated.Notes)
	require.NotNil(t, updated.DueDate)
	assert.True(t, invoice.Total.Equal(updated.Total))

	require.NoError(t, env.invoices.Delete(env.ctx, env.org.ID, invoice.ID))
	_, err = env.invoices.GetByID(env.ctx, env.org.ID, invoice.ID)
	assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateCustomer(t, env.db, env.org.ID, "Beta SA")

	for _, customerID := range []uuid.UUID{env.customer.ID, other.ID, other.ID} {
		_, err := env.invoices.Create(env.ctx, env.org.ID, &domain.CreateInvoiceRequest{
			CustomerID: customerID,
			Lines:      []domain.LineRequest{env.pricedLine("Transport", 1, 50, 0)},
		})
		require.NoError(t, err)
	}

	page, err := env.invoices.List(env.ctx, env.org.ID, &domain.InvoiceFilters{CustomerID: &other.ID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Data.([]domain.InvoiceDTO), 2)
}
