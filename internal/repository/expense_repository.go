package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Omit("Category").Create(expense).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Expense, error) {
	var expense domain.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Omit("Category").Save(expense).Error
}

func (r *ExpenseRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Delete(&domain.Expense{}, "id = ?", id).Error
}

func (r *ExpenseRepository) List(ctx context.Context, orgID uuid.UUID, filters *domain.ExpenseFilters, page, pageSize int) ([]domain.Expense, int64, error) {
	var expenses []domain.Expense
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Expense{}).Scopes(OrganizationScope(orgID))

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.CategoryID != nil {
			query = query.Where("category_id = ?", *filters.CategoryID)
		}
		if filters.From != nil {
			query = query.Where("date >= ?", *filters.From)
		}
		if filters.To != nil {
			query = query.Where("date <= ?", *filters.To)
		}
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(supplier) LIKE ? OR LOWER(description) LIKE ? OR LOWER(reference) LIKE ?",
				searchPattern, searchPattern, searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.Preload("Category").Offset(offset).Limit(pageSize).Order("date DESC").Find(&expenses).Error

	return expenses, total, err
}

// ============================================================================
// Categories
// ============================================================================

func (r *ExpenseRepository) CreateCategory(ctx context.Context, category *domain.ExpenseCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *ExpenseRepository) GetCategory(ctx context.Context, orgID, id uuid.UUID) (*domain.ExpenseCategory, error) {
	var category domain.ExpenseCategory
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *ExpenseRepository) ListCategories(ctx context.Context, orgID uuid.UUID) ([]domain.ExpenseCategory, error) {
	var categories []domain.ExpenseCategory
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *ExpenseRepository) UpdateCategory(ctx context.Context, category *domain.ExpenseCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *ExpenseRepository) DeleteCategory(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Delete(&domain.ExpenseCategory{}, "id = ?", id).Error
}

// CountByCategory counts the expenses filed under a category
func (r *ExpenseRepository) CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Expense{}).
		Scopes(OrganizationScope(orgID)).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
