package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

// GetByQuoteID returns the delivery attached to a quote of the organization
func (r *DeliveryRepository) GetByQuoteID(ctx context.Context, orgID, quoteID uuid.UUID) (*domain.Delivery, error) {
	var delivery domain.Delivery
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("quote_id = ?", quoteID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// ExistsForQuote reports whether a quote already has a delivery
func (r *DeliveryRepository) ExistsForQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Delivery{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	return count > 0, err
}

func (r *DeliveryRepository) Update(ctx context.Context, delivery *domain.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

func (r *DeliveryRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Delete(&domain.Delivery{}, "id = ?", id).Error
}
