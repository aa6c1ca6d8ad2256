package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Get paginated list of customers with optional filters
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, email or VAT number"
// @Param type query string false "Filter by type" Enums(B2B, B2C)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CustomerDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)

	var customerType *domain.CustomerType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := domain.CustomerType(raw)
		if !t.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid customer type")
			return
		}
		customerType = &t
	}

	result, err := h.customerService.List(r.Context(), orgID, page, pageSize, r.URL.Query().Get("search"), customerType)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list customers")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create customer
// @Description B2B customers need a company name, B2C customers a last name
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body domain.CreateCustomerRequest true "Customer data"
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create customer")
		return
	}

	w.Header().Set("Location", "/api/v1/customers/"+customer.ID.String())
	respondJSON(w, http.StatusCreated, customer)
}

// GetByID godoc
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get customer")
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Update godoc
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Param request body domain.UpdateCustomerRequest true "Customer data"
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.UpdateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update customer")
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Delete godoc
// @Summary Delete customer
// @Description Customers with quotes or invoices cannot be deleted
// @Tags Customers
// @Param id path string true "Customer ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddAddress godoc
// @Summary Add address to customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Param request body domain.CreateCustomerAddressRequest true "Address"
// @Success 201 {object} domain.CustomerAddressDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/addresses [post]
func (h *CustomerHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.CreateCustomerAddressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	address, err := h.customerService.AddAddress(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "add customer address")
		return
	}

	respondJSON(w, http.StatusCreated, address)
}

// RemoveAddress godoc
// @Summary Remove address from customer
// @Tags Customers
// @Param id path string true "Customer ID" format(uuid)
// @Param addressId path string true "Address ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/addresses/{addressId} [delete]
func (h *CustomerHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}
	addressID, ok := uuidParam(w, r, "addressId", "address")
	if !ok {
		return
	}

	if err := h.customerService.RemoveAddress(r.Context(), orgID, id, addressID); err != nil {
		respondServiceError(w, r, h.logger, err, "remove customer address")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddContact godoc
// @Summary Add contact to customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Param request body domain.CreateCustomerContactRequest true "Contact"
// @Success 201 {object} domain.CustomerContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/contacts [post]
func (h *CustomerHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req domain.CreateCustomerContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.customerService.AddContact(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "add customer contact")
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

// RemoveContact godoc
// @Summary Remove contact from customer
// @Tags Customers
// @Param id path string true "Customer ID" format(uuid)
// @Param contactId path string true "Contact ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/contacts/{contactId} [delete]
func (h *CustomerHandler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "customer")
	if !ok {
		return
	}
	contactID, ok := uuidParam(w, r, "contactId", "contact")
	if !ok {
		return
	}

	if err := h.customerService.RemoveContact(r.Context(), orgID, id, contactID); err != nil {
		respondServiceError(w, r, h.logger, err, "remove customer contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
