package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpenseService records purchases and their categories
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	logger      *zap.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo *repository.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

func optionalDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func (s *ExpenseService) verifyCategory(ctx context.Context, orgID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.expenseRepo.GetCategory(ctx, orgID, *categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseCategoryNotFound
		}
		return fmt.Errorf("failed to verify expense category: %w", err)
	}
	return nil
}

// applyExpenseRequest copies the request and derives the missing amounts
func applyExpenseRequest(e *domain.Expense, req *domain.CreateExpenseRequest) error {
	rate := domain.Money(req.TaxRate)
	ht, tax, ttc, err := ExpenseAmounts(optionalDecimal(req.AmountHT), optionalDecimal(req.AmountTTC), rate)
	if err != nil {
		return err
	}

	e.CategoryID = req.CategoryID
	e.Date = req.Date
	e.Supplier = strings.TrimSpace(req.Supplier)
	e.Description = req.Description
	e.AmountHT = ht
	e.TaxRate = rate
	e.TaxAmount = tax
	e.AmountTTC = ttc
	e.PaymentMethod = req.PaymentMethod
	e.Reference = req.Reference
	e.CostCenter = req.CostCenter
	e.Project = req.Project
	e.Notes = req.Notes
	if req.Status != "" {
		e.Status = req.Status
	}
	if e.Status == "" {
		e.Status = domain.ExpenseStatusPending
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateExpenseRequest) (*domain.ExpenseDTO, error) {
	if err := s.verifyCategory(ctx, orgID, req.CategoryID); err != nil {
		return nil, err
	}

	expense := &domain.Expense{OrganizationID: orgID}
	if err := applyExpenseRequest(expense, req); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("Expense created",
		zap.String("organization_id", orgID.String()),
		zap.String("expense_id", expense.ID.String()),
		zap.String("amount_ttc", expense.AmountTTC.StringFixed(2)))

	return s.GetByID(ctx, orgID, expense.ID)
}

func (s *ExpenseService) getExpense(ctx context.Context, orgID, id uuid.UUID) (*domain.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

func (s *ExpenseService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.ExpenseDTO, error) {
	expense, err := s.getExpense(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}

func (s *ExpenseService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateExpenseRequest) (*domain.ExpenseDTO, error) {
	expense, err := s.getExpense(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.verifyCategory(ctx, orgID, req.CategoryID); err != nil {
		return nil, err
	}
	if err := applyExpenseRequest(expense, req); err != nil {
		return nil, err
	}
	expense.Category = nil

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return s.GetByID(ctx, orgID, id)
}

func (s *ExpenseService) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.ExpenseStatus) (*domain.ExpenseDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown expense status %q", ErrInvalidInput, status)
	}

	expense, err := s.getExpense(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	expense.Status = status
	expense.Category = nil

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense status: %w", err)
	}

	return s.GetByID(ctx, orgID, id)
}

func (s *ExpenseService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.getExpense(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (s *ExpenseService) List(ctx context.Context, orgID uuid.UUID, filters *domain.ExpenseFilters, page, pageSize int) (*domain.PaginatedResponse, error) {
	if filters != nil && filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, ErrInvalidDateRange
	}
	page, pageSize, _ = repository.Pagination(page, pageSize)

	expenses, total, err := s.expenseRepo.List(ctx, orgID, filters, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	dtos := make([]domain.ExpenseDTO, len(expenses))
	for i := range expenses {
		dtos[i] = mapper.ToExpenseDTO(&expenses[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}

// ============================================================================
// Categories
// ============================================================================

func (s *ExpenseService) CreateCategory(ctx context.Context, orgID uuid.UUID, req *domain.ExpenseCategoryRequest) (*domain.ExpenseCategoryDTO, error) {
	category := &domain.ExpenseCategory{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Color:          req.Color,
	}
	if err := s.expenseRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create expense category: %w", err)
	}
	dto := mapper.ToExpenseCategoryDTO(category)
	return &dto, nil
}

func (s *ExpenseService) getCategory(ctx context.Context, orgID, id uuid.UUID) (*domain.ExpenseCategory, error) {
	category, err := s.expenseRepo.GetCategory(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get expense category: %w", err)
	}
	return category, nil
}

func (s *ExpenseService) GetCategory(ctx context.Context, orgID, id uuid.UUID) (*domain.ExpenseCategoryDTO, error) {
	category, err := s.getCategory(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToExpenseCategoryDTO(category)
	return &dto, nil
}

func (s *ExpenseService) ListCategories(ctx context.Context, orgID uuid.UUID) ([]domain.ExpenseCategoryDTO, error) {
	categories, err := s.expenseRepo.ListCategories(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense categories: %w", err)
	}
	dtos := make([]domain.ExpenseCategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = mapper.ToExpenseCategoryDTO(&categories[i])
	}
	return dtos, nil
}

func (s *ExpenseService) UpdateCategory(ctx context.Context, orgID, id uuid.UUID, req *domain.ExpenseCategoryRequest) (*domain.ExpenseCategoryDTO, error) {
	category, err := s.getCategory(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	category.Color = req.Color

	if err := s.expenseRepo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update expense category: %w", err)
	}
	dto := mapper.ToExpenseCategoryDTO(category)
	return &dto, nil
}

// DeleteCategory refuses to remove a category that still files expenses
func (s *ExpenseService) DeleteCategory(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.getCategory(ctx, orgID, id); err != nil {
		return err
	}

	count, err := s.expenseRepo.CountByCategory(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to count expenses: %w", err)
	}
	if count > 0 {
		return ErrExpenseCategoryInUse
	}

	if err := s.expenseRepo.DeleteCategory(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete expense category: %w", err)
	}
	return nil
}
