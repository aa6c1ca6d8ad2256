package handler_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createQuote posts a SALE quote with one 3 x 19.99 line at 10% discount
func (e *handlerEnv) createQuote(t *testing.T) domain.QuoteDTO {
	t.Helper()
	customer := testutil.CreateCustomer(t, e.db, e.org.ID, "Acme SPRL")

	rr := serve(e.quotes.Create, e.request(t, http.MethodPost, "/quotes", domain.CreateQuoteRequest{
		Type:       domain.QuoteTypeSale,
		CustomerID: customer.ID,
		Lines: []domain.LineRequest{
			{IsSection: true, Description: "Fournitures"},
			{Description: "Carton", Quantity: 3, UnitPrice: testutil.Ptr(19.99), Discount: 10, TaxID: &e.vat21.ID},
		},
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[domain.QuoteDTO](t, rr)
}

func (e *handlerEnv) changeQuoteStatus(t *testing.T, id uuid.UUID, status domain.QuoteStatus) int {
	t.Helper()
	rr := serve(e.quotes.UpdateStatus, e.request(t, http.MethodPatch, "/quotes/"+id.String()+"/status",
		domain.UpdateQuoteStatusRequest{Status: status}, map[string]string{"id": id.String()}))
	return rr.Code
}

func TestQuoteHandler_CreateComputesTotals(t *testing.T) {
	env := newHandlerEnv(t)

	quote := env.createQuote(t)

	assert.Equal(t, "QS-000001", quote.Number)
	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, "53.97", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "11.33", quote.TaxAmount.StringFixed(2))
	assert.Equal(t, "65.30", quote.Total.StringFixed(2))
}

func TestQuoteHandler_CreateValidation(t *testing.T) {
	env := newHandlerEnv(t)

	t.Run("unknown type", func(t *testing.T) {
		rr := serve(env.quotes.Create, env.request(t, http.MethodPost, "/quotes",
			`{"type":"LEASE","customerId":"`+uuid.NewString()+`"}`, nil))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody[domain.APIError](t, rr).Errors, "type")
	})

	t.Run("unknown customer", func(t *testing.T) {
		rr := serve(env.quotes.Create, env.request(t, http.MethodPost, "/quotes", domain.CreateQuoteRequest{
			Type:       domain.QuoteTypeSale,
			CustomerID: uuid.New(),
		}, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestQuoteHandler_AcceptedQuoteIsLocked(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)
	params := map[string]string{"id": quote.ID.String()}

	require.Equal(t, http.StatusOK, env.changeQuoteStatus(t, quote.ID, domain.QuoteStatusAccepted))

	rr := serve(env.quotes.AddLine, env.request(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/lines",
		domain.LineRequest{Description: "Transport", Quantity: 1, UnitPrice: testutil.Ptr(50.0)}, params))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, domain.ErrorTypeInvalidState, decodeBody[domain.APIError](t, rr).Type)

	assert.Equal(t, http.StatusUnprocessableEntity, env.changeQuoteStatus(t, quote.ID, domain.QuoteStatusDraft))
}

func TestQuoteHandler_Lines(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)
	params := map[string]string{"id": quote.ID.String()}

	rr := serve(env.quotes.AddLine, env.request(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/lines",
		domain.LineRequest{Description: "Transport", Quantity: 1, UnitPrice: testutil.Ptr(50.0), TaxID: &env.vat21.ID}, params))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	updated := decodeBody[domain.QuoteDTO](t, rr)
	require.Len(t, updated.Lines, 3)
	assert.Equal(t, "103.97", updated.Subtotal.StringFixed(2))

	added := updated.Lines[2]
	lineParams := map[string]string{"id": quote.ID.String(), "lineId": added.ID.String()}

	rr = serve(env.quotes.RemoveLine, env.request(t, http.MethodDelete, "/quotes/"+quote.ID.String()+"/lines/"+added.ID.String(), nil, lineParams))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "53.97", decodeBody[domain.QuoteDTO](t, rr).Subtotal.StringFixed(2))

	rr = serve(env.quotes.RemoveLine, env.request(t, http.MethodDelete, "/quotes/"+quote.ID.String()+"/lines/"+added.ID.String(), nil, lineParams))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuoteHandler_Duplicate(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)

	rr := serve(env.quotes.Duplicate, env.request(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/duplicate", nil,
		map[string]string{"id": quote.ID.String()}))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	copied := decodeBody[domain.QuoteDTO](t, rr)
	assert.NotEqual(t, quote.ID, copied.ID)
	assert.Equal(t, "QS-000002", copied.Number)
	assert.Equal(t, domain.QuoteStatusDraft, copied.Status)
	assert.True(t, quote.Total.Equal(copied.Total))
}

func TestQuoteHandler_List(t *testing.T) {
	env := newHandlerEnv(t)
	env.createQuote(t)
	accepted := env.createQuote(t)
	require.Equal(t, http.StatusOK, env.changeQuoteStatus(t, accepted.ID, domain.QuoteStatusAccepted))

	rr := serve(env.quotes.List, env.request(t, http.MethodGet, "/quotes?status=ACCEPTED", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), decodeBody[domain.PaginatedResponse](t, rr).Total)

	rr = serve(env.quotes.List, env.request(t, http.MethodGet, "/quotes?status=WON", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.quotes.List, env.request(t, http.MethodGet, "/quotes?customerId=nope", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuoteHandler_PDF(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)

	rr := serve(env.quotes.PDF, env.request(t, http.MethodGet, "/quotes/"+quote.ID.String()+"/pdf", nil,
		map[string]string{"id": quote.ID.String()}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), quote.Number)
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))
}

func TestQuoteHandler_Export(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)

	t.Run("csv", func(t *testing.T) {
		rr := serve(env.quotes.ExportCSV, env.request(t, http.MethodGet, "/quotes/export/csv", nil, nil))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), ".csv")

		reader := csv.NewReader(bytes.NewReader(rr.Body.Bytes()))
		reader.Comma = ';'
		records, err := reader.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, quote.Number, records[1][0])
	})

	t.Run("xlsx", func(t *testing.T) {
		rr := serve(env.quotes.ExportXLSX, env.request(t, http.MethodGet, "/quotes/export/xlsx", nil, nil))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))
	})
}

func TestQuoteHandler_Delivery(t *testing.T) {
	env := newHandlerEnv(t)
	quote := env.createQuote(t)
	params := map[string]string{"id": quote.ID.String()}
	target := "/quotes/" + quote.ID.String() + "/delivery"

	rr := serve(env.quotes.GetDelivery, env.request(t, http.MethodGet, target, nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req := domain.DeliveryRequest{
		Type:       domain.DeliveryTypeWith,
		City:       "Namur",
		Distance:   testutil.Ptr(40.0),
		PricePerKm: testutil.Ptr(1.5),
		HasReturn:  true,
	}

	rr = serve(env.quotes.CreateDelivery, env.request(t, http.MethodPost, target, req, params))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	delivery := decodeBody[domain.DeliveryDTO](t, rr)
	assert.Equal(t, "120.00", delivery.Cost.StringFixed(2))

	rr = serve(env.quotes.CreateDelivery, env.request(t, http.MethodPost, target, req, params))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = serve(env.quotes.DeleteDelivery, env.request(t, http.MethodDelete, target, nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
