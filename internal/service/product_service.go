package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductService struct {
	productRepo *repository.ProductRepository
	taxRepo     *repository.TaxRepository
	logger      *zap.Logger
}

func NewProductService(productRepo *repository.ProductRepository, taxRepo *repository.TaxRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		taxRepo:     taxRepo,
		logger:      logger,
	}
}

func (s *ProductService) verifyTax(ctx context.Context, orgID uuid.UUID, taxID *uuid.UUID) error {
	if taxID == nil {
		return nil
	}
	if _, err := s.taxRepo.GetByID(ctx, orgID, *taxID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaxNotFound
		}
		return fmt.Errorf("failed to verify tax: %w", err)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	if err := s.verifyTax(ctx, orgID, req.TaxID); err != nil {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	product := &domain.Product{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		SKU:            req.SKU,
		Price:          domain.Money(req.Price),
		TaxID:          req.TaxID,
		Unit:           unit,
		IsService:      req.IsService,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetByID(ctx, orgID, product.ID)
}

func (s *ProductService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.verifyTax(ctx, orgID, req.TaxID); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.SKU = req.SKU
	product.Price = domain.Money(req.Price)
	product.TaxID = req.TaxID
	product.Tax = nil
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.IsService = req.IsService
	product.IsActive = req.IsActive

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetByID(ctx, orgID, id)
}

func (s *ProductService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, activeOnly bool) (*domain.PaginatedResponse, error) {
	page, pageSize, _ = repository.Pagination(page, pageSize)

	products, total, err := s.productRepo.List(ctx, orgID, page, pageSize, search, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}
