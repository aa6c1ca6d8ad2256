package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type TaxHandler struct {
	taxService *service.TaxService
	logger     *zap.Logger
}

func NewTaxHandler(taxService *service.TaxService, logger *zap.Logger) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
		logger:     logger,
	}
}

// List godoc
// @Summary List taxes
// @Tags Taxes
// @Produce json
// @Param active query bool false "Only active taxes"
// @Success 200 {array} domain.TaxDTO
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes [get]
func (h *TaxHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	taxes, err := h.taxService.List(r.Context(), orgID, r.URL.Query().Get("active") == "true")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list taxes")
		return
	}

	respondJSON(w, http.StatusOK, taxes)
}

// Create godoc
// @Summary Create tax
// @Description The first tax of an organization becomes its default
// @Tags Taxes
// @Accept json
// @Produce json
// @Param request body domain.CreateTaxRequest true "Tax data"
// @Success 201 {object} domain.TaxDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes [post]
func (h *TaxHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateTaxRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tax, err := h.taxService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create tax")
		return
	}

	w.Header().Set("Location", "/api/v1/taxes/"+tax.ID.String())
	respondJSON(w, http.StatusCreated, tax)
}

// GetByID godoc
// @Summary Get tax
// @Tags Taxes
// @Produce json
// @Param id path string true "Tax ID" format(uuid)
// @Success 200 {object} domain.TaxDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes/{id} [get]
func (h *TaxHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "tax")
	if !ok {
		return
	}

	tax, err := h.taxService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get tax")
		return
	}

	respondJSON(w, http.StatusOK, tax)
}

// Update godoc
// @Summary Update tax
// @Tags Taxes
// @Accept json
// @Produce json
// @Param id path string true "Tax ID" format(uuid)
// @Param request body domain.UpdateTaxRequest true "Tax data"
// @Success 200 {object} domain.TaxDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes/{id} [put]
func (h *TaxHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "tax")
	if !ok {
		return
	}

	var req domain.UpdateTaxRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tax, err := h.taxService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update tax")
		return
	}

	respondJSON(w, http.StatusOK, tax)
}

// SetDefault godoc
// @Summary Make tax the organization default
// @Tags Taxes
// @Produce json
// @Param id path string true "Tax ID" format(uuid)
// @Success 200 {object} domain.TaxDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes/{id}/default [post]
func (h *TaxHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "tax")
	if !ok {
		return
	}

	tax, err := h.taxService.SetDefault(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "set default tax")
		return
	}

	respondJSON(w, http.StatusOK, tax)
}

// Delete godoc
// @Summary Delete tax
// @Description Taxes referenced by products or document lines cannot be deleted
// @Tags Taxes
// @Param id path string true "Tax ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /taxes/{id} [delete]
func (h *TaxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "tax")
	if !ok {
		return
	}

	if err := h.taxService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete tax")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
