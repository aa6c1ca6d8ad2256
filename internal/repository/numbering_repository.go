package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentNumberingRepository handles the per-organization numbering series
// used by quotes and invoices.
type DocumentNumberingRepository struct {
	db *gorm.DB
}

// NewDocumentNumberingRepository creates a new DocumentNumberingRepository
func NewDocumentNumberingRepository(db *gorm.DB) *DocumentNumberingRepository {
	return &DocumentNumberingRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *DocumentNumberingRepository) WithTx(tx *gorm.DB) *DocumentNumberingRepository {
	return &DocumentNumberingRepository{db: tx}
}

// Allocate hands out the next number of a series and increments the counter.
// A missing series is created with the type's default prefix. The row is
// locked with SELECT FOR UPDATE so concurrent callers never receive the same number.
//
// Returns gorm.ErrRecordNotFound when the series was deleted on purpose.
func (r *DocumentNumberingRepository) Allocate(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType) (string, error) {
	var number string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := domain.DocumentNumbering{
			OrganizationID: orgID,
			Type:           docType,
			Prefix:         docType.DefaultPrefix(),
			Next:           1,
			Length:         6,
		}
		// The unique (organization_id, type) index keeps this a no-op for
		// existing series, including soft-deleted ones.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to create document numbering: %w", err)
		}

		var seq domain.DocumentNumbering
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organization_id = ? AND type = ?", orgID, docType).
			First(&seq).Error; err != nil {
			return err
		}

		number = seq.Format()

		if err := tx.Model(&seq).UpdateColumn("next", gorm.Expr("next + 1")).Error; err != nil {
			return fmt.Errorf("failed to update document numbering: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return number, nil
}

// List returns every active series of an organization
func (r *DocumentNumberingRepository) List(ctx context.Context, orgID uuid.UUID) ([]domain.DocumentNumbering, error) {
	var rows []domain.DocumentNumbering
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Order("type ASC").
		Find(&rows).Error
	return rows, err
}

// Get returns one active series
func (r *DocumentNumberingRepository) Get(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType) (*domain.DocumentNumbering, error) {
	var row domain.DocumentNumbering
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("type = ?", docType).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert creates the series or overwrites it, restoring a soft-deleted one
func (r *DocumentNumberingRepository) Upsert(ctx context.Context, row *domain.DocumentNumbering) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.DocumentNumbering
		err := tx.Unscoped().
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organization_id = ? AND type = ?", row.OrganizationID, row.Type).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(row).Error
		}
		if err != nil {
			return err
		}

		existing.Prefix = row.Prefix
		existing.Next = row.Next
		existing.Length = row.Length
		existing.DeletedAt = gorm.DeletedAt{}
		if err := tx.Unscoped().Save(&existing).Error; err != nil {
			return err
		}
		*row = existing
		return nil
	})
}

// Delete soft-deletes a series. Later allocations for it fail until it is upserted again.
func (r *DocumentNumberingRepository) Delete(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND type = ?", orgID, docType).
		Delete(&domain.DocumentNumbering{})
	return result.RowsAffected, result.Error
}
