package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/cache"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaxService manages tax rates and resolves the rate applied to document lines
type TaxService struct {
	db       *gorm.DB
	taxRepo  *repository.TaxRepository
	cache    *cache.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTaxService creates a new tax service. cacheClient may be nil.
func NewTaxService(db *gorm.DB, taxRepo *repository.TaxRepository, cacheClient *cache.Client, cacheTTL time.Duration, logger *zap.Logger) *TaxService {
	return &TaxService{
		db:       db,
		taxRepo:  taxRepo,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func taxRateKey(orgID, taxID uuid.UUID) string {
	return fmt.Sprintf("tax_rate:%s:%s", orgID, taxID)
}

// GetRate returns the percentage of a tax. A nil or unknown tax yields zero.
func (s *TaxService) GetRate(ctx context.Context, orgID uuid.UUID, taxID *uuid.UUID) (decimal.Decimal, error) {
	if taxID == nil {
		return decimal.Zero, nil
	}

	key := taxRateKey(orgID, *taxID)
	var cached string
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn("Failed to read cached tax rate", zap.String("key", key), zap.Error(err))
	} else if found {
		if rate, err := decimal.NewFromString(cached); err == nil {
			return rate, nil
		}
	}

	tax, err := s.taxRepo.GetByID(ctx, orgID, *taxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get tax rate: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, tax.Rate.String(), s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache tax rate", zap.String("key", key), zap.Error(err))
	}

	return tax.Rate, nil
}

// rateWithin resolves a tax rate inside an open transaction, bypassing the cache
func (s *TaxService) rateWithin(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, taxID *uuid.UUID) (decimal.Decimal, error) {
	if taxID == nil {
		return decimal.Zero, nil
	}
	tax, err := s.taxRepo.WithTx(tx).GetByID(ctx, orgID, *taxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get tax rate: %w", err)
	}
	return tax.Rate, nil
}

func (s *TaxService) invalidate(ctx context.Context, orgID, taxID uuid.UUID) {
	if err := s.cache.Delete(ctx, taxRateKey(orgID, taxID)); err != nil {
		s.logger.Warn("Failed to invalidate cached tax rate",
			zap.String("tax_id", taxID.String()),
			zap.Error(err))
	}
}

func (s *TaxService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateTaxRequest) (*domain.TaxDTO, error) {
	tax := &domain.Tax{
		OrganizationID: orgID,
		Name:           req.Name,
		Rate:           domain.Money(req.Rate),
		Description:    req.Description,
		IsDefault:      req.IsDefault,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.taxRepo.WithTx(tx)
		if tax.IsDefault {
			if err := repo.ClearDefault(ctx, orgID, uuid.Nil); err != nil {
				return fmt.Errorf("failed to clear default tax: %w", err)
			}
		}
		if err := repo.Create(ctx, tax); err != nil {
			return fmt.Errorf("failed to create tax: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tax created",
		zap.String("organization_id", orgID.String()),
		zap.String("tax_id", tax.ID.String()),
		zap.String("rate", tax.Rate.String()))

	dto := mapper.ToTaxDTO(tax)
	return &dto, nil
}

func (s *TaxService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.TaxDTO, error) {
	tax, err := s.taxRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaxNotFound
		}
		return nil, fmt.Errorf("failed to get tax: %w", err)
	}
	dto := mapper.ToTaxDTO(tax)
	return &dto, nil
}

func (s *TaxService) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]domain.TaxDTO, error) {
	taxes, err := s.taxRepo.List(ctx, orgID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxes: %w", err)
	}
	dtos := make([]domain.TaxDTO, len(taxes))
	for i := range taxes {
		dtos[i] = mapper.ToTaxDTO(&taxes[i])
	}
	return dtos, nil
}

func (s *TaxService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateTaxRequest) (*domain.TaxDTO, error) {
	var tax *domain.Tax
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.taxRepo.WithTx(tx)
		var err error
		tax, err = repo.GetByID(ctx, orgID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaxNotFound
			}
			return fmt.Errorf("failed to get tax: %w", err)
		}

		tax.Name = req.Name
		tax.Rate = domain.Money(req.Rate)
		tax.Description = req.Description
		tax.IsDefault = req.IsDefault
		tax.IsActive = req.IsActive

		if tax.IsDefault {
			if err := repo.ClearDefault(ctx, orgID, tax.ID); err != nil {
				return fmt.Errorf("failed to clear default tax: %w", err)
			}
		}
		if err := repo.Update(ctx, tax); err != nil {
			return fmt.Errorf("failed to update tax: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, orgID, id)

	dto := mapper.ToTaxDTO(tax)
	return &dto, nil
}

// SetDefault makes a tax the organization's only default in one transaction
func (s *TaxService) SetDefault(ctx context.Context, orgID, id uuid.UUID) (*domain.TaxDTO, error) {
	var tax *domain.Tax
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.taxRepo.WithTx(tx)
		var err error
		tax, err = repo.GetByID(ctx, orgID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaxNotFound
			}
			return fmt.Errorf("failed to get tax: %w", err)
		}

		if err := repo.ClearDefault(ctx, orgID, id); err != nil {
			return fmt.Errorf("failed to clear default tax: %w", err)
		}

		tax.IsDefault = true
		if err := repo.Update(ctx, tax); err != nil {
			return fmt.Errorf("failed to set default tax: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Default tax changed",
		zap.String("organization_id", orgID.String()),
		zap.String("tax_id", id.String()))

	dto := mapper.ToTaxDTO(tax)
	return &dto, nil
}

// Delete removes a tax unless products still reference it
func (s *TaxService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.taxRepo.GetByID(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaxNotFound
		}
		return fmt.Errorf("failed to get tax: %w", err)
	}

	count, err := s.taxRepo.CountProducts(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to count products using tax: %w", err)
	}
	if count > 0 {
		return ErrTaxInUse
	}

	if err := s.taxRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete tax: %w", err)
	}

	s.invalidate(ctx, orgID, id)
	return nil
}
