package handler

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

// documentTypePattern matches series names such as quote_sale or invoice
var documentTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,49}$`)

// SettingsHandler serves organization profile and document numbering settings
type SettingsHandler struct {
	organizationService *service.OrganizationService
	numberingService    *service.NumberingService
	logger              *zap.Logger
}

func NewSettingsHandler(organizationService *service.OrganizationService, numberingService *service.NumberingService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		organizationService: organizationService,
		numberingService:    numberingService,
		logger:              logger,
	}
}

func documentTypeParam(w http.ResponseWriter, r *http.Request) (domain.DocumentType, bool) {
	raw := chi.URLParam(r, "type")
	if !documentTypePattern.MatchString(raw) {
		respondWithError(w, http.StatusBadRequest, "Invalid document type")
		return "", false
	}
	return domain.DocumentType(raw), true
}

// GetOrganization godoc
// @Summary Get organization profile
// @Tags Settings
// @Produce json
// @Success 200 {object} domain.OrganizationDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/organization [get]
func (h *SettingsHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	org, err := h.organizationService.Get(r.Context(), orgID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get organization")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// UpdateOrganization godoc
// @Summary Update organization profile
// @Description Name, VAT number, IBAN and address printed on quotes and invoices
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body domain.UpdateOrganizationRequest true "Organization data"
// @Success 200 {object} domain.OrganizationDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/organization [put]
func (h *SettingsHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateOrganizationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	org, err := h.organizationService.Update(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update organization")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// ListNumbering godoc
// @Summary List numbering series
// @Tags Settings
// @Produce json
// @Success 200 {array} domain.DocumentNumberingDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/numbering [get]
func (h *SettingsHandler) ListNumbering(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	series, err := h.numberingService.List(r.Context(), orgID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list document numbering")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// GetNumbering godoc
// @Summary Get numbering series
// @Tags Settings
// @Produce json
// @Param type path string true "Document type" example(quote_sale)
// @Success 200 {object} domain.DocumentNumberingDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/numbering/{type} [get]
func (h *SettingsHandler) GetNumbering(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	docType, ok := documentTypeParam(w, r)
	if !ok {
		return
	}

	series, err := h.numberingService.Get(r.Context(), orgID, docType)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get document numbering")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// UpsertNumbering godoc
// @Summary Create or replace numbering series
// @Description Omitted fields reset to their defaults (empty prefix, next 1, length 6)
// @Tags Settings
// @Accept json
// @Produce json
// @Param type path string true "Document type" example(quote_sale)
// @Param request body domain.UpsertDocumentNumberingRequest true "Series settings"
// @Success 200 {object} domain.DocumentNumberingDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/numbering/{type} [put]
func (h *SettingsHandler) UpsertNumbering(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	docType, ok := documentTypeParam(w, r)
	if !ok {
		return
	}

	var req domain.UpsertDocumentNumberingRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	series, err := h.numberingService.Upsert(r.Context(), orgID, docType, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "save document numbering")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// DeleteNumbering godoc
// @Summary Delete numbering series
// @Description Documents of this type cannot be numbered until the series is configured again
// @Tags Settings
// @Param type path string true "Document type" example(quote_sale)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings/numbering/{type} [delete]
func (h *SettingsHandler) DeleteNumbering(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	docType, ok := documentTypeParam(w, r)
	if !ok {
		return
	}

	if err := h.numberingService.Delete(r.Context(), orgID, docType); err != nil {
		respondServiceError(w, r, h.logger, err, "delete document numbering")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
