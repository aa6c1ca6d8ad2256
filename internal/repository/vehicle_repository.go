package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Omit("Documents").Save(vehicle).Error
}

// Delete removes the vehicle and its document rows
func (r *VehicleRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).Delete(&domain.VehicleDocument{}).Error; err != nil {
			return err
		}
		return tx.Scopes(OrganizationScope(orgID)).Delete(&domain.Vehicle{}, "id = ?", id).Error
	})
}

func (r *VehicleRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, status *domain.VehicleStatus) ([]domain.Vehicle, int64, error) {
	var vehicles []domain.Vehicle
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Vehicle{}).Scopes(OrganizationScope(orgID))

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(license_plate) LIKE ? OR LOWER(brand) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&vehicles).Error

	return vehicles, total, err
}

// ============================================================================
// Documents
// ============================================================================

func (r *VehicleRepository) CreateDocument(ctx context.Context, doc *domain.VehicleDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *VehicleRepository) GetDocument(ctx context.Context, vehicleID, id uuid.UUID) (*domain.VehicleDocument, error) {
	var doc domain.VehicleDocument
	err := r.db.WithContext(ctx).
		Where("id = ? AND vehicle_id = ?", id, vehicleID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *VehicleRepository) ListDocuments(ctx context.Context, vehicleID uuid.UUID) ([]domain.VehicleDocument, error) {
	var docs []domain.VehicleDocument
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *VehicleRepository) DeleteDocument(ctx context.Context, vehicleID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND vehicle_id = ?", id, vehicleID).
		Delete(&domain.VehicleDocument{}).Error
}

// CountReferences counts the quotes and deliveries referencing a vehicle
func (r *VehicleRepository) CountReferences(ctx context.Context, orgID, vehicleID uuid.UUID) (int64, error) {
	var quotes, deliveries int64
	err := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Scopes(OrganizationScope(orgID)).
		Where("vehicle_id = ?", vehicleID).
		Count(&quotes).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&domain.Delivery{}).
		Scopes(OrganizationScope(orgID)).
		Where("vehicle_id = ?", vehicleID).
		Count(&deliveries).Error
	return quotes + deliveries, err
}
