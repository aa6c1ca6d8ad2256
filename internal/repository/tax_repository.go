package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type TaxRepository struct {
	db *gorm.DB
}

func NewTaxRepository(db *gorm.DB) *TaxRepository {
	return &TaxRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *TaxRepository) WithTx(tx *gorm.DB) *TaxRepository {
	return &TaxRepository{db: tx}
}

func (r *TaxRepository) Create(ctx context.Context, tax *domain.Tax) error {
	return r.db.WithContext(ctx).Create(tax).Error
}

func (r *TaxRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Tax, error) {
	var tax domain.Tax
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&tax).Error
	if err != nil {
		return nil, err
	}
	return &tax, nil
}

func (r *TaxRepository) Update(ctx context.Context, tax *domain.Tax) error {
	return r.db.WithContext(ctx).Save(tax).Error
}

func (r *TaxRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Delete(&domain.Tax{}, "id = ?", id).Error
}

// List returns the organization's taxes, default first
func (r *TaxRepository) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]domain.Tax, error) {
	var taxes []domain.Tax
	query := r.db.WithContext(ctx).Scopes(OrganizationScope(orgID))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("is_default DESC").Order("rate DESC").Order("name ASC").Find(&taxes).Error
	return taxes, err
}

// GetDefault returns the organization's default tax
func (r *TaxRepository) GetDefault(ctx context.Context, orgID uuid.UUID) (*domain.Tax, error) {
	var tax domain.Tax
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("is_default = ?", true).
		First(&tax).Error
	if err != nil {
		return nil, err
	}
	return &tax, nil
}

// ClearDefault unsets the default flag on every tax of the organization except keepID
func (r *TaxRepository) ClearDefault(ctx context.Context, orgID uuid.UUID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Tax{}).
		Scopes(OrganizationScope(orgID)).
		Where("is_default = ? AND id <> ?", true, keepID).
		Update("is_default", false).Error
}

// CountProducts counts the products referencing a tax
func (r *TaxRepository) CountProducts(ctx context.Context, orgID, taxID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Scopes(OrganizationScope(orgID)).
		Where("tax_id = ?", taxID).
		Count(&count).Error
	return count, err
}
