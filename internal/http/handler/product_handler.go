package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// List godoc
// @Summary List products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, SKU or description"
// @Param active query bool false "Only active products"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProductDTO}
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)
	q := r.URL.Query()

	result, err := h.productService.List(r.Context(), orgID, page, pageSize, q.Get("search"), q.Get("active") == "true")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list products")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.CreateProductRequest true "Product data"
// @Success 201 {object} domain.ProductDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create product")
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID.String())
	respondJSON(w, http.StatusCreated, product)
}

// GetByID godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Success 200 {object} domain.ProductDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Update godoc
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Param request body domain.UpdateProductRequest true "Product data"
// @Success 200 {object} domain.ProductDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "product")
	if !ok {
		return
	}

	var req domain.UpdateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Delete godoc
// @Summary Delete product
// @Tags Products
// @Param id path string true "Product ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
