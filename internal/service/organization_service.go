package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrganizationService exposes the profile of the caller's organization
type OrganizationService struct {
	orgRepo *repository.OrganizationRepository
	logger  *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgRepo *repository.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		logger:  logger,
	}
}

func (s *OrganizationService) get(ctx context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) Get(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationDTO, error) {
	org, err := s.get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOrganizationDTO(org)
	return &dto, nil
}

// Update overwrites the profile. Country, currency and locale keep their
// current value when omitted.
func (s *OrganizationService) Update(ctx context.Context, orgID uuid.UUID, req *domain.UpdateOrganizationRequest) (*domain.OrganizationDTO, error) {
	org, err := s.get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	org.Name = strings.TrimSpace(req.Name)
	org.LegalName = req.LegalName
	org.VATNumber = req.VATNumber
	org.IBAN = strings.ReplaceAll(strings.ToUpper(req.IBAN), " ", "")
	org.Email = req.Email
	org.Phone = req.Phone
	org.Website = req.Website
	org.Street = req.Street
	org.City = req.City
	org.ZipCode = req.ZipCode
	if req.Country != "" {
		org.Country = strings.ToUpper(req.Country)
	}
	if req.Currency != "" {
		org.Currency = strings.ToUpper(req.Currency)
	}
	if req.Locale != "" {
		org.Locale = req.Locale
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.logger.Info("Organization updated", zap.String("organization_id", orgID.String()))

	dto := mapper.ToOrganizationDTO(org)
	return &dto, nil
}
