package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by number or customer name"
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, PARTIAL, PAID, OVERDUE, CANCELLED)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.InvoiceDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)

	filters := &domain.InvoiceFilters{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.InvoiceStatus(raw)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid invoice status")
			return
		}
		filters.Status = &s
	}
	customerID, err := uuidQuery(r, "customerId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.CustomerID = customerID

	result, err := h.invoiceService.List(r.Context(), orgID, filters, page, pageSize)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list invoices")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create invoice")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// CreateFromQuote godoc
// @Summary Invoice an accepted quote
// @Description Copies the quote lines and totals into a new DRAFT invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param quoteId path string true "Quote ID" format(uuid)
// @Param request body domain.CreateInvoiceFromQuoteRequest false "Invoice options"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/from-quote/{quoteId} [post]
func (h *InvoiceHandler) CreateFromQuote(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	quoteID, ok := uuidParam(w, r, "quoteId", "quote")
	if !ok {
		return
	}

	var req domain.CreateInvoiceFromQuoteRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.CreateFromQuote(r.Context(), orgID, quoteID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create invoice from quote")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// GetByID godoc
// @Summary Get invoice
// @Description Returns the invoice with its lines and payments
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Update godoc
// @Summary Update invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Param request body domain.UpdateInvoiceRequest true "Invoice data"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	var req domain.UpdateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// UpdateStatus godoc
// @Summary Change invoice status
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Param request body domain.UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	var req domain.UpdateInvoiceStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(r.Context(), orgID, id, req.Status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "change invoice status")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Delete godoc
// @Summary Delete invoice
// @Description Only DRAFT invoices without payments can be deleted
// @Tags Invoices
// @Param id path string true "Invoice ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete invoice")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPayments godoc
// @Summary List invoice payments
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Success 200 {array} domain.PaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	payments, err := h.invoiceService.ListPayments(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list payments")
		return
	}

	respondJSON(w, http.StatusOK, payments)
}

// AddPayment godoc
// @Summary Record payment
// @Description The invoice moves to PARTIAL or PAID depending on the balance
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Param request body domain.CreatePaymentRequest true "Payment data"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}

	var req domain.CreatePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.AddPayment(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "record payment")
		return
	}

	respondJSON(w, http.StatusCreated, invoice)
}

// RemovePayment godoc
// @Summary Remove payment
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Param paymentId path string true "Payment ID" format(uuid)
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/payments/{paymentId} [delete]
func (h *InvoiceHandler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "invoice")
	if !ok {
		return
	}
	paymentID, ok := uuidParam(w, r, "paymentId", "payment")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemovePayment(r.Context(), orgID, id, paymentID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "remove payment")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
