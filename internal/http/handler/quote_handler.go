package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuoteHandler struct {
	quoteService    *service.QuoteService
	deliveryService *service.DeliveryService
	logger          *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, deliveryService *service.DeliveryService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService:    quoteService,
		deliveryService: deliveryService,
		logger:          logger,
	}
}

// quoteFilters reads the status, type, customerId and search query parameters
func quoteFilters(w http.ResponseWriter, r *http.Request) (*domain.QuoteFilters, bool) {
	q := r.URL.Query()
	filters := &domain.QuoteFilters{Search: q.Get("search")}

	if raw := q.Get("status"); raw != "" {
		s := domain.QuoteStatus(raw)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid quote status")
			return nil, false
		}
		filters.Status = &s
	}
	if raw := q.Get("type"); raw != "" {
		t := domain.QuoteType(raw)
		if !t.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid quote type")
			return nil, false
		}
		filters.Type = &t
	}
	customerID, err := uuidQuery(r, "customerId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	filters.CustomerID = customerID

	return filters, true
}

// List godoc
// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by number or customer name"
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)
// @Param type query string false "Filter by type" Enums(SALE, RENTAL)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	filters, ok := quoteFilters(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)

	result, err := h.quoteService.List(r.Context(), orgID, filters, page, pageSize)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list quotes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create quote
// @Description Creates a DRAFT quote and allocates its number from the SALE or RENTAL series
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// GetByID godoc
// @Summary Get quote
// @Description Returns the quote with its lines and delivery
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Update godoc
// @Summary Update quote
// @Description Only DRAFT quotes can be edited
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Quote data"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.UpdateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Delete godoc
// @Summary Delete quote
// @Description Quotes that have been invoiced cannot be deleted
// @Tags Quotes
// @Param id path string true "Quote ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	if err := h.quoteService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary Change quote status
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteStatusRequest true "New status"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.ChangeStatus(r.Context(), orgID, id, req.Status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "change quote status")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Duplicate godoc
// @Summary Duplicate quote
// @Description Copies the quote and its lines into a new DRAFT with a fresh number
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 201 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/duplicate [post]
func (h *QuoteHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.Duplicate(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "duplicate quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// AddLine godoc
// @Summary Add quote line
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.LineRequest true "Line data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/lines [post]
func (h *QuoteHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.LineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.AddLine(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "add quote line")
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// UpdateLine godoc
// @Summary Update quote line
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Param request body domain.LineRequest true "Line data"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/lines/{lineId} [put]
func (h *QuoteHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}
	lineID, ok := uuidParam(w, r, "lineId", "line")
	if !ok {
		return
	}

	var req domain.LineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.UpdateLine(r.Context(), orgID, id, lineID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update quote line")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// RemoveLine godoc
// @Summary Remove quote line
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/lines/{lineId} [delete]
func (h *QuoteHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}
	lineID, ok := uuidParam(w, r, "lineId", "line")
	if !ok {
		return
	}

	quote, err := h.quoteService.RemoveLine(r.Context(), orgID, id, lineID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "remove quote line")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// PDF godoc
// @Summary Download quote as PDF
// @Tags Quotes
// @Produce application/pdf
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	data, filename, err := h.quoteService.RenderPDF(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "render quote pdf")
		return
	}

	respondFile(w, "application/pdf", filename, data)
}

// ExportCSV godoc
// @Summary Export quotes as CSV
// @Description Exports the filtered quotes as a semicolon separated sheet
// @Tags Quotes
// @Produce text/csv
// @Param search query string false "Search by number or customer name"
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)
// @Param type query string false "Filter by type" Enums(SALE, RENTAL)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/export/csv [get]
func (h *QuoteHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", h.quoteService.ExportCSV)
}

// ExportXLSX godoc
// @Summary Export quotes as XLSX
// @Tags Quotes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "Search by number or customer name"
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)
// @Param type query string false "Filter by type" Enums(SALE, RENTAL)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/export/xlsx [get]
func (h *QuoteHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", xlsxContentType, h.quoteService.ExportXLSX)
}

type quoteExporter func(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters) ([]byte, error)

func (h *QuoteHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, render quoteExporter) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	filters, ok := quoteFilters(w, r)
	if !ok {
		return
	}

	data, err := render(r.Context(), orgID, filters)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "export quotes")
		return
	}

	filename := "quotes-" + time.Now().UTC().Format("20060102") + "." + ext
	respondFile(w, contentType, filename, data)
}

// GetDelivery godoc
// @Summary Get quote delivery
// @Tags Deliveries
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.DeliveryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/delivery [get]
func (h *QuoteHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	delivery, err := h.deliveryService.GetByQuote(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get delivery")
		return
	}

	respondJSON(w, http.StatusOK, delivery)
}

// CreateDelivery godoc
// @Summary Create quote delivery
// @Description A quote has at most one delivery. Its cost is computed from distance, fixed price and return trip.
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.DeliveryRequest true "Delivery data"
// @Success 201 {object} domain.DeliveryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/delivery [post]
func (h *QuoteHandler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.DeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveryService.Create(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create delivery")
		return
	}

	respondJSON(w, http.StatusCreated, delivery)
}

// UpdateDelivery godoc
// @Summary Update quote delivery
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.DeliveryRequest true "Delivery data"
// @Success 200 {object} domain.DeliveryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/delivery [put]
func (h *QuoteHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.DeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveryService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update delivery")
		return
	}

	respondJSON(w, http.StatusOK, delivery)
}

// DeleteDelivery godoc
// @Summary Delete quote delivery
// @Tags Deliveries
// @Param id path string true "Quote ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/delivery [delete]
func (h *QuoteHandler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "quote")
	if !ok {
		return
	}

	if err := h.deliveryService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete delivery")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
