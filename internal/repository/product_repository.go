package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Tax").
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Tax").Save(product).Error
}

func (r *ProductRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *ProductRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, activeOnly bool) ([]domain.Product, int64, error) {
	var products []domain.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(OrganizationScope(orgID))

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.Preload("Tax").Offset(offset).Limit(pageSize).Order("name ASC").Find(&products).Error

	return products, total, err
}
