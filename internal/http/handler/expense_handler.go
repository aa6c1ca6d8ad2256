package handler

import (
	"net/http"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// List godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by supplier, description or reference"
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED, PAID)
// @Param categoryId query string false "Filter by category" format(uuid)
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ExpenseDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses [get]
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)

	filters := &domain.ExpenseFilters{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.ExpenseStatus(raw)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid expense status")
			return
		}
		filters.Status = &s
	}

	var err error
	if filters.CategoryID, err = uuidQuery(r, "categoryId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filters.From, err = dateQuery(r, "from"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filters.To, err = dateQuery(r, "to"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.expenseService.List(r.Context(), orgID, filters, page, pageSize)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list expenses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create expense
// @Description Either amountHT or amountTTC is required; the other is derived from the tax rate
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body domain.CreateExpenseRequest true "Expense data"
// @Success 201 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expense, err := h.expenseService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create expense")
		return
	}

	w.Header().Set("Location", "/api/v1/expenses/"+expense.ID.String())
	respondJSON(w, http.StatusCreated, expense)
}

// GetByID godoc
// @Summary Get expense
// @Tags Expenses
// @Produce json
// @Param id path string true "Expense ID" format(uuid)
// @Success 200 {object} domain.ExpenseDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "expense")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get expense")
		return
	}

	respondJSON(w, http.StatusOK, expense)
}

// Update godoc
// @Summary Update expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID" format(uuid)
// @Param request body domain.UpdateExpenseRequest true "Expense data"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "expense")
	if !ok {
		return
	}

	var req domain.UpdateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expense, err := h.expenseService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update expense")
		return
	}

	respondJSON(w, http.StatusOK, expense)
}

// UpdateStatus godoc
// @Summary Change expense status
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID" format(uuid)
// @Param request body domain.UpdateExpenseStatusRequest true "New status"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/{id}/status [patch]
func (h *ExpenseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "expense")
	if !ok {
		return
	}

	var req domain.UpdateExpenseStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expense, err := h.expenseService.UpdateStatus(r.Context(), orgID, id, req.Status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "change expense status")
		return
	}

	respondJSON(w, http.StatusOK, expense)
}

// Delete godoc
// @Summary Delete expense
// @Tags Expenses
// @Param id path string true "Expense ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "expense")
	if !ok {
		return
	}

	if err := h.expenseService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories godoc
// @Summary List expense categories
// @Tags Expenses
// @Produce json
// @Success 200 {array} domain.ExpenseCategoryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/categories [get]
func (h *ExpenseHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	categories, err := h.expenseService.ListCategories(r.Context(), orgID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list expense categories")
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create expense category
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body domain.ExpenseCategoryRequest true "Category data"
// @Success 201 {object} domain.ExpenseCategoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/categories [post]
func (h *ExpenseHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.ExpenseCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.expenseService.CreateCategory(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create expense category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// GetCategory godoc
// @Summary Get expense category
// @Tags Expenses
// @Produce json
// @Param categoryId path string true "Category ID" format(uuid)
// @Success 200 {object} domain.ExpenseCategoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/categories/{categoryId} [get]
func (h *ExpenseHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "categoryId", "category")
	if !ok {
		return
	}

	category, err := h.expenseService.GetCategory(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get expense category")
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// UpdateCategory godoc
// @Summary Update expense category
// @Tags Expenses
// @Accept json
// @Produce json
// @Param categoryId path string true "Category ID" format(uuid)
// @Param request body domain.ExpenseCategoryRequest true "Category data"
// @Success 200 {object} domain.ExpenseCategoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/categories/{categoryId} [put]
func (h *ExpenseHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "categoryId", "category")
	if !ok {
		return
	}

	var req domain.ExpenseCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.expenseService.UpdateCategory(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update expense category")
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete expense category
// @Description Categories still used by expenses cannot be deleted
// @Tags Expenses
// @Param categoryId path string true "Category ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/categories/{categoryId} [delete]
func (h *ExpenseHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "categoryId", "category")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteCategory(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete expense category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
