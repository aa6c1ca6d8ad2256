package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetWithContacts loads the customer with its addresses and contacts
func (r *CustomerRepository) GetWithContacts(ctx context.Context, orgID, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes the customer with its addresses and contacts
func (r *CustomerRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.CustomerAddress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&domain.CustomerContact{}).Error; err != nil {
			return err
		}
		return tx.Scopes(OrganizationScope(orgID)).Delete(&domain.Customer{}, "id = ?", id).Error
	})
}

func (r *CustomerRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, customerType *domain.CustomerType) ([]domain.Customer, int64, error) {
	var customers []domain.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Customer{}).Scopes(OrganizationScope(orgID))

	if customerType != nil {
		query = query.Where("type = ?", *customerType)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(company_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(vat_number) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&customers).Error

	return customers, total, err
}

// CountDocuments counts the quotes and invoices referencing a customer
func (r *CustomerRepository) CountDocuments(ctx context.Context, orgID, customerID uuid.UUID) (int64, error) {
	var quotes, invoices int64
	if err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Scopes(OrganizationScope(orgID)).
		Where("customer_id = ?", customerID).
		Count(&quotes).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Scopes(OrganizationScope(orgID)).
		Where("customer_id = ?", customerID).
		Count(&invoices).Error; err != nil {
		return 0, err
	}
	return quotes + invoices, nil
}

// ============================================================================
// Addresses and contacts
// ============================================================================

// CreateAddress stores an address. A default address replaces the previous
// default of the same type.
func (r *CustomerRepository) CreateAddress(ctx context.Context, address *domain.CustomerAddress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			err := tx.Model(&domain.CustomerAddress{}).
				Where("customer_id = ? AND type = ? AND is_default = ?", address.CustomerID, address.Type, true).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
}

// DeleteAddress removes an address of the customer and reports whether a row matched
func (r *CustomerRepository) DeleteAddress(ctx context.Context, customerID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		Delete(&domain.CustomerAddress{})
	return result.RowsAffected > 0, result.Error
}

// CreateContact stores a contact. A primary contact replaces the previous one.
func (r *CustomerRepository) CreateContact(ctx context.Context, contact *domain.CustomerContact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			err := tx.Model(&domain.CustomerContact{}).
				Where("customer_id = ? AND is_primary = ?", contact.CustomerID, true).
				Update("is_primary", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(contact).Error
	})
}

// DeleteContact removes a contact of the customer and reports whether a row matched
func (r *CustomerRepository) DeleteContact(ctx context.Context, customerID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		Delete(&domain.CustomerContact{})
	return result.RowsAffected > 0, result.Error
}
