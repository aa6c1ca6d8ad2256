package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteRepository handles quotes and their lines
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *QuoteRepository) WithTx(tx *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: tx}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at ASC")
}

// Create inserts the quote together with any lines it carries
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit("Customer", "Vehicle", "Delivery").Create(quote).Error
}

// GetByID loads a quote with customer, vehicle, lines and delivery
func (r *QuoteRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Lines", orderedLines).
		Preload("Delivery").
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetForUpdate loads the bare quote row and locks it until the transaction ends
func (r *QuoteRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Update saves the quote header without touching its associations
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(quote).Error
}

// UpdateStatus sets the status column only
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateTotals writes the derived money columns
func (r *QuoteRepository) UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, discount, tax, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subtotal":        subtotal,
			"discount_amount": discount,
			"tax_amount":      tax,
			"total":           total,
			"updated_at":      time.Now(),
		}).Error
}

// Delete removes the quote with its lines and delivery
func (r *QuoteRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&domain.QuoteLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&domain.Delivery{}).Error; err != nil {
			return err
		}
		return tx.Scopes(OrganizationScope(orgID)).Delete(&domain.Quote{}, "id = ?", id).Error
	})
}

// CountInvoices counts the invoices created from a quote
func (r *QuoteRepository) CountInvoices(ctx context.Context, orgID, quoteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Scopes(OrganizationScope(orgID)).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	return count, err
}

func applyQuoteFilters(query *gorm.DB, filters *domain.QuoteFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Search != "" {
		searchPattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(number) LIKE ?", searchPattern)
	}
	return query
}

// List returns a page of quotes with their customer
func (r *QuoteRepository) List(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters, page, pageSize int) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{}).Scopes(OrganizationScope(orgID))
	query = applyQuoteFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, pageSize, offset := Pagination(page, pageSize)
	err := query.
		Preload("Customer").
		Preload("Vehicle").
		Offset(offset).
		Limit(pageSize).
		Order("date DESC").
		Order("number DESC").
		Find(&quotes).Error

	return quotes, total, err
}

// ListForExport returns every matching quote with customer and lines
func (r *QuoteRepository) ListForExport(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters) ([]domain.Quote, error) {
	var quotes []domain.Quote
	query := r.db.WithContext(ctx).Model(&domain.Quote{}).Scopes(OrganizationScope(orgID))
	query = applyQuoteFilters(query, filters)
	err := query.
		Preload("Customer").
		Preload("Lines", orderedLines).
		Order("date DESC").
		Order("number DESC").
		Find(&quotes).Error
	return quotes, err
}

// FindRentalConflicts returns the quotes that reserve the vehicle during [start, end].
// Only SENT and ACCEPTED quotes reserve a vehicle; bounds are inclusive.
func (r *QuoteRepository) FindRentalConflicts(ctx context.Context, orgID, vehicleID uuid.UUID, start, end time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Scopes(OrganizationScope(orgID)).
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", []domain.QuoteStatus{domain.QuoteStatusSent, domain.QuoteStatusAccepted}).
		Where("rental_start_date IS NOT NULL AND rental_end_date IS NOT NULL").
		Where("rental_start_date <= ? AND rental_end_date >= ?", end, start).
		Order("rental_start_date ASC").
		Find(&quotes).Error
	return quotes, err
}

// ExpireSent moves every SENT quote whose validity ended before now to EXPIRED
func (r *QuoteRepository) ExpireSent(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("status = ?", domain.QuoteStatusSent).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Updates(map[string]interface{}{
			"status":     domain.QuoteStatusExpired,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// ============================================================================
// Lines
// ============================================================================

func (r *QuoteRepository) CreateLine(ctx context.Context, line *domain.QuoteLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *QuoteRepository) GetLine(ctx context.Context, quoteID, lineID uuid.UUID) (*domain.QuoteLine, error) {
	var line domain.QuoteLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND quote_id = ?", lineID, quoteID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *QuoteRepository) UpdateLine(ctx context.Context, line *domain.QuoteLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *QuoteRepository) DeleteLine(ctx context.Context, quoteID, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND quote_id = ?", lineID, quoteID).
		Delete(&domain.QuoteLine{}).Error
}

// ListLines returns every line of a quote in display order
func (r *QuoteRepository) ListLines(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteLine, error) {
	var lines []domain.QuoteLine
	err := orderedLines(r.db.WithContext(ctx)).
		Where("quote_id = ?", quoteID).
		Find(&lines).Error
	return lines, err
}

// NextLineOrder returns the position after the last line of a quote
func (r *QuoteRepository) NextLineOrder(ctx context.Context, quoteID uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&domain.QuoteLine{}).
		Where("quote_id = ?", quoteID).
		Select("MAX(sort_order)").
		Row().
		Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}
