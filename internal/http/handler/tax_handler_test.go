package handler_test

import (
	"net/http"
	"testing"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxHandler_CreateAndSetDefault(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.taxes.Create, env.request(t, http.MethodPost, "/taxes", domain.CreateTaxRequest{
		Name: "TVA 6%",
		Rate: 6,
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reduced := decodeBody[domain.TaxDTO](t, rr)
	assert.True(t, reduced.IsActive)
	assert.False(t, reduced.IsDefault)

	rr = serve(env.taxes.SetDefault, env.request(t, http.MethodPost, "/taxes/"+reduced.ID.String()+"/default", nil,
		map[string]string{"id": reduced.ID.String()}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decodeBody[domain.TaxDTO](t, rr).IsDefault)

	rr = serve(env.taxes.List, env.request(t, http.MethodGet, "/taxes", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	taxes := decodeBody[[]domain.TaxDTO](t, rr)
	require.Len(t, taxes, 2)

	defaults := 0
	for _, tax := range taxes {
		if tax.IsDefault {
			defaults++
			assert.Equal(t, reduced.ID, tax.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestTaxHandler_Validation(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.taxes.Create, env.request(t, http.MethodPost, "/taxes", `{"name":"Hors norme","rate":150}`, nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Must be less than or equal to 100", decodeBody[domain.APIError](t, rr).Errors["rate"])
}

func TestTaxHandler_DeleteInUse(t *testing.T) {
	env := newHandlerEnv(t)
	testutil.CreateProduct(t, env.db, env.org.ID, "Carton", 19.99, &env.vat21.ID)
	params := map[string]string{"id": env.vat21.ID.String()}

	rr := serve(env.taxes.Delete, env.request(t, http.MethodDelete, "/taxes/"+env.vat21.ID.String(), nil, params))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.ErrorTypeConflict, decodeBody[domain.APIError](t, rr).Type)
}

func TestProductHandler_CRUD(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.products.Create, env.request(t, http.MethodPost, "/products", domain.CreateProductRequest{
		Name:  "Carton double cannelure",
		SKU:   "CRT-02",
		Price: 2.5,
		TaxID: &env.vat21.ID,
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	product := decodeBody[domain.ProductDTO](t, rr)
	assert.Equal(t, "TVA 21%", product.TaxName)
	params := map[string]string{"id": product.ID.String()}

	rr = serve(env.products.List, env.request(t, http.MethodGet, "/products?search=carton", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), decodeBody[domain.PaginatedResponse](t, rr).Total)

	rr = serve(env.products.Update, env.request(t, http.MethodPut, "/products/"+product.ID.String(), domain.UpdateProductRequest{
		Name:     "Carton double cannelure",
		Price:    2.75,
		IsActive: false,
	}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeBody[domain.ProductDTO](t, rr)
	assert.Equal(t, "2.75", updated.Price.StringFixed(2))
	assert.False(t, updated.IsActive)

	rr = serve(env.products.Delete, env.request(t, http.MethodDelete, "/products/"+product.ID.String(), nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(env.products.GetByID, env.request(t, http.MethodGet, "/products/"+product.ID.String(), nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
