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

// DeliveryService manages the optional delivery attached to a quote
type DeliveryService struct {
	deliveryRepo *repository.DeliveryRepository
	quoteRepo    *repository.QuoteRepository
	vehicleRepo  *repository.VehicleRepository
	logger       *zap.Logger
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	deliveryRepo *repository.DeliveryRepository,
	quoteRepo *repository.QuoteRepository,
	vehicleRepo *repository.VehicleRepository,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		quoteRepo:    quoteRepo,
		vehicleRepo:  vehicleRepo,
		logger:       logger,
	}
}

func (s *DeliveryService) verifyQuote(ctx context.Context, orgID, quoteID uuid.UUID) error {
	if _, err := s.quoteRepo.GetByID(ctx, orgID, quoteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to get quote: %w", err)
	}
	return nil
}

func (s *DeliveryService) verifyVehicle(ctx context.Context, orgID uuid.UUID, vehicleID *uuid.UUID) error {
	if vehicleID == nil {
		return nil
	}
	if _, err := s.vehicleRepo.GetByID(ctx, orgID, *vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return fmt.Errorf("failed to verify vehicle: %w", err)
	}
	return nil
}

// applyDeliveryRequest copies the request onto the row and reprices it
func applyDeliveryRequest(d *domain.Delivery, req *domain.DeliveryRequest) {
	d.VehicleID = req.VehicleID
	d.Type = req.Type
	d.Street = req.Street
	d.City = req.City
	d.ZipCode = req.ZipCode
	d.Country = req.Country
	if d.Country == "" {
		d.Country = "BE"
	}
	d.DeliveryDate = req.DeliveryDate
	d.Distance = domain.NullMoney(req.Distance)
	d.FixedPrice = domain.NullMoney(req.FixedPrice)
	d.PricePerKm = domain.NullRate(req.PricePerKm)
	d.HasReturn = req.HasReturn
	d.DriverNotes = req.DriverNotes
	d.Cost = DeliveryCost(
		domain.NullOrZero(d.Distance),
		domain.NullOrZero(d.PricePerKm),
		domain.NullOrZero(d.FixedPrice),
		d.HasReturn,
	)
}

// Create attaches a delivery to a quote. A quote has at most one delivery.
func (s *DeliveryService) Create(ctx context.Context, orgID, quoteID uuid.UUID, req *domain.DeliveryRequest) (*domain.DeliveryDTO, error) {
	if err := s.verifyQuote(ctx, orgID, quoteID); err != nil {
		return nil, err
	}
	if err := s.verifyVehicle(ctx, orgID, req.VehicleID); err != nil {
		return nil, err
	}

	exists, err := s.deliveryRepo.ExistsForQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing delivery: %w", err)
	}
	if exists {
		return nil, ErrDeliveryExists
	}

	delivery := &domain.Delivery{
		OrganizationID: orgID,
		QuoteID:        quoteID,
	}
	applyDeliveryRequest(delivery, req)

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		// concurrent create lost the race on idx_deliveries_quote_id
		if repository.IsDuplicateKey(err) {
			return nil, ErrDeliveryExists
		}
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	s.logger.Info("Delivery created",
		zap.String("organization_id", orgID.String()),
		zap.String("quote_id", quoteID.String()),
		zap.String("cost", delivery.Cost.StringFixed(2)))

	dto := mapper.ToDeliveryDTO(delivery)
	return &dto, nil
}

func (s *DeliveryService) getByQuote(ctx context.Context, orgID, quoteID uuid.UUID) (*domain.Delivery, error) {
	delivery, err := s.deliveryRepo.GetByQuoteID(ctx, orgID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	return delivery, nil
}

func (s *DeliveryService) GetByQuote(ctx context.Context, orgID, quoteID uuid.UUID) (*domain.DeliveryDTO, error) {
	delivery, err := s.getByQuote(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDeliveryDTO(delivery)
	return &dto, nil
}

// Update replaces the delivery details and recomputes its cost
func (s *DeliveryService) Update(ctx context.Context, orgID, quoteID uuid.UUID, req *domain.DeliveryRequest) (*domain.DeliveryDTO, error) {
	delivery, err := s.getByQuote(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := s.verifyVehicle(ctx, orgID, req.VehicleID); err != nil {
		return nil, err
	}

	applyDeliveryRequest(delivery, req)

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to update delivery: %w", err)
	}

	dto := mapper.ToDeliveryDTO(delivery)
	return &dto, nil
}

func (s *DeliveryService) Delete(ctx context.Context, orgID, quoteID uuid.UUID) error {
	delivery, err := s.getByQuote(ctx, orgID, quoteID)
	if err != nil {
		return err
	}
	if err := s.deliveryRepo.Delete(ctx, orgID, delivery.ID); err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	return nil
}
