package handler_test

import (
	"net/http"
	"testing"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseHandler_CreateFromTaxInclusiveAmount(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.expenses.Create, env.request(t, http.MethodPost, "/expenses", domain.CreateExpenseRequest{
		Date:      testutil.Date(2024, 3, 5),
		Supplier:  "Total Energies",
		AmountTTC: testutil.Ptr(121.0),
		TaxRate:   21,
	}, nil))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	expense := decodeBody[domain.ExpenseDTO](t, rr)
	assert.Equal(t, "100.00", expense.AmountHT.StringFixed(2))
	assert.Equal(t, "21.00", expense.TaxAmount.StringFixed(2))
	assert.Equal(t, domain.ExpenseStatusPending, expense.Status)
	assert.Equal(t, "/api/v1/expenses/"+expense.ID.String(), rr.Header().Get("Location"))
}

func TestExpenseHandler_CreateRequiresAnAmount(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.expenses.Create, env.request(t, http.MethodPost, "/expenses",
		`{"date":"2024-03-05T00:00:00Z","supplier":"Shell","taxRate":21}`, nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeBody[domain.APIError](t, rr)
	assert.Contains(t, apiErr.Errors, "amountHT")
	assert.Contains(t, apiErr.Errors, "amountTTC")
}

func TestExpenseHandler_StatusAndList(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.expenses.Create, env.request(t, http.MethodPost, "/expenses", domain.CreateExpenseRequest{
		Date:     testutil.Date(2024, 2, 10),
		Supplier: "Shell",
		AmountHT: testutil.Ptr(50.0),
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	expense := decodeBody[domain.ExpenseDTO](t, rr)
	params := map[string]string{"id": expense.ID.String()}

	rr = serve(env.expenses.UpdateStatus, env.request(t, http.MethodPatch, "/expenses/"+expense.ID.String()+"/status",
		domain.UpdateExpenseStatusRequest{Status: domain.ExpenseStatusApproved}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, domain.ExpenseStatusApproved, decodeBody[domain.ExpenseDTO](t, rr).Status)

	rr = serve(env.expenses.List, env.request(t, http.MethodGet, "/expenses?status=APPROVED&from=2024-02-01&to=2024-02-29", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, int64(1), decodeBody[domain.PaginatedResponse](t, rr).Total)

	rr = serve(env.expenses.List, env.request(t, http.MethodGet, "/expenses?from=2024-03-01&to=2024-02-01", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.expenses.List, env.request(t, http.MethodGet, "/expenses?from=yesterday", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.expenses.Delete, env.request(t, http.MethodDelete, "/expenses/"+expense.ID.String(), nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestExpenseHandler_Categories(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.expenses.CreateCategory, env.request(t, http.MethodPost, "/expenses/categories",
		domain.ExpenseCategoryRequest{Name: "Carburant", Color: "#ff8800"}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	category := decodeBody[domain.ExpenseCategoryDTO](t, rr)
	params := map[string]string{"categoryId": category.ID.String()}

	rr = serve(env.expenses.CreateCategory, env.request(t, http.MethodPost, "/expenses/categories",
		domain.ExpenseCategoryRequest{Name: "Divers", Color: "orange"}, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[domain.APIError](t, rr).Errors, "color")

	rr = serve(env.expenses.Create, env.request(t, http.MethodPost, "/expenses", domain.CreateExpenseRequest{
		CategoryID: &category.ID,
		Date:       testutil.Date(2024, 2, 10),
		Supplier:   "Esso",
		AmountHT:   testutil.Ptr(45.0),
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(env.expenses.DeleteCategory, env.request(t, http.MethodDelete, "/expenses/categories/"+category.ID.String(), nil, params))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = serve(env.expenses.ListCategories, env.request(t, http.MethodGet, "/expenses/categories", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]domain.ExpenseCategoryDTO](t, rr), 1)
}
