package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository handles invoices with their lines and payments
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

func newestPaymentsFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date DESC").Order("created_at DESC")
}

// Create inserts the invoice together with its lines
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit("Customer", "Quote", "Payments").Create(invoice).Error
}

// GetByID loads an invoice with customer, origin quote, lines and payments
func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Quote").
		Preload("Lines", orderedLines).
		Preload("Payments", newestPaymentsFirst).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetForUpdate loads the bare invoice row and locks it until the transaction ends
func (r *InvoiceRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update saves the invoice header without touching its associations
func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// UpdatePaymentState writes the paid amount and status derived from payments
func (r *InvoiceRepository) UpdatePaymentState(ctx context.Context, id uuid.UUID, paid decimal.Decimal, status domain.InvoiceStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount": paid,
			"status":      status,
			"updated_at":  time.Now(),
		}).Error
}

// Delete removes the invoice with its lines and payments
func (r *InvoiceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Scopes(OrganizationScope(orgID)).Delete(&domain.Invoice{}, "id = ?", id).Error
	})
}

// List returns a page of invoices with their customer
func (r *InvoiceRepository) List(ctx context.Context, orgID uuid.UUID, filters *domain.InvoiceFilters, page, pageSize int) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).Scopes(OrganizationScope(orgID))

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.CustomerID != nil {
			query = query.Where("customer_id = ?", *filters.CustomerID)
		}
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(number) LIKE ?", searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.
		Preload("Customer").
		Offset(offset).
		Limit(pageSize).
		Order("date DESC").
		Order("number DESC").
		Find(&invoices).Error

	return invoices, total, err
}

// ============================================================================
// Payments
// ============================================================================

func (r *InvoiceRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *InvoiceRepository) GetPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND invoice_id = ?", paymentID, invoiceID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *InvoiceRepository) DeletePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND invoice_id = ?", paymentID, invoiceID).
		Delete(&domain.Payment{}).Error
}

// ListPayments returns the payments of an invoice, newest first
func (r *InvoiceRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := newestPaymentsFirst(r.db.WithContext(ctx)).
		Where("invoice_id = ?", invoiceID).
		Find(&payments).Error
	return payments, err
}
