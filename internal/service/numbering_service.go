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

// NumberingService allocates document numbers and manages numbering settings
type NumberingService struct {
	numberingRepo *repository.DocumentNumberingRepository
	logger        *zap.Logger
}

// NewNumberingService creates a new numbering service
func NewNumberingService(numberingRepo *repository.DocumentNumberingRepository, logger *zap.Logger) *NumberingService {
	return &NumberingService{
		numberingRepo: numberingRepo,
		logger:        logger,
	}
}

// Allocate returns the next number of a series and advances it.
// Pass tx to allocate inside a caller's transaction, or nil.
func (s *NumberingService) Allocate(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, docType domain.DocumentType) (string, error) {
	repo := s.numberingRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	number, err := repo.Allocate(ctx, orgID, docType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNumberingNotFound
		}
		s.logger.Error("Failed to allocate document number",
			zap.String("organization_id", orgID.String()),
			zap.String("type", string(docType)),
			zap.Error(err))
		return "", fmt.Errorf("failed to allocate document number: %w", err)
	}

	return number, nil
}

func (s *NumberingService) List(ctx context.Context, orgID uuid.UUID) ([]domain.DocumentNumberingDTO, error) {
	rows, err := s.numberingRepo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document numbering: %w", err)
	}
	dtos := make([]domain.DocumentNumberingDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToDocumentNumberingDTO(&rows[i])
	}
	return dtos, nil
}

func (s *NumberingService) Get(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType) (*domain.DocumentNumberingDTO, error) {
	row, err := s.numberingRepo.Get(ctx, orgID, docType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNumberingNotFound
		}
		return nil, fmt.Errorf("failed to get document numbering: %w", err)
	}
	dto := mapper.ToDocumentNumberingDTO(row)
	return &dto, nil
}

// Upsert creates or overwrites a series. Omitted fields take the defaults
// (empty prefix, next 1, length 6).
func (s *NumberingService) Upsert(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType, req *domain.UpsertDocumentNumberingRequest) (*domain.DocumentNumberingDTO, error) {
	row := &domain.DocumentNumbering{
		OrganizationID: orgID,
		Type:           docType,
		Prefix:         "",
		Next:           1,
		Length:         6,
	}
	if req.Prefix != nil {
		row.Prefix = *req.Prefix
	}
	if req.Next != nil {
		row.Next = *req.Next
	}
	if req.Length != nil {
		row.Length = *req.Length
	}

	if err := s.numberingRepo.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save document numbering: %w", err)
	}

	s.logger.Info("Document numbering saved",
		zap.String("organization_id", orgID.String()),
		zap.String("type", string(docType)),
		zap.String("preview", row.Format()))

	dto := mapper.ToDocumentNumberingDTO(row)
	return &dto, nil
}

// Delete removes a series. Allocation for it fails until it is configured again.
func (s *NumberingService) Delete(ctx context.Context, orgID uuid.UUID, docType domain.DocumentType) error {
	affected, err := s.numberingRepo.Delete(ctx, orgID, docType)
	if err != nil {
		return fmt.Errorf("failed to delete document numbering: %w", err)
	}
	if affected == 0 {
		return ErrNumberingNotFound
	}
	return nil
}
