package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VehicleService manages the fleet, vehicle documents and rental availability
type VehicleService struct {
	vehicleRepo *repository.VehicleRepository
	quoteRepo   *repository.QuoteRepository
	storage     storage.Storage
	logger      *zap.Logger
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(
	vehicleRepo *repository.VehicleRepository,
	quoteRepo *repository.QuoteRepository,
	store storage.Storage,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		quoteRepo:   quoteRepo,
		storage:     store,
		logger:      logger,
	}
}

func applyVehicleRequest(vehicle *domain.Vehicle, req *domain.CreateVehicleRequest) {
	vehicle.Name = req.Name
	vehicle.LicensePlate = req.LicensePlate
	vehicle.VIN = req.VIN
	vehicle.Category = req.Category
	vehicle.Brand = req.Brand
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.LoadCapacity = domain.NullMoney(req.LoadCapacity)
	vehicle.Volume = domain.NullMoney(req.Volume)
	vehicle.Seats = req.Seats
	vehicle.DailyRate = domain.Money(req.DailyRate)
	vehicle.FlatRate = domain.NullMoney(req.FlatRate)
	vehicle.KmRate = domain.Rate(req.KmRate)
	vehicle.CurrentKm = req.CurrentKm
	vehicle.LastMaintenance = req.LastMaintenance
	vehicle.Status = req.Status
	if vehicle.Status == "" {
		vehicle.Status = domain.VehicleStatusActive
	}
}

func (s *VehicleService) getVehicle(ctx context.Context, orgID, id uuid.UUID) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *VehicleService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateVehicleRequest) (*domain.VehicleDTO, error) {
	vehicle := &domain.Vehicle{OrganizationID: orgID}
	applyVehicleRequest(vehicle, req)

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.VehicleDTO, error) {
	vehicle, err := s.getVehicle(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateVehicleRequest) (*domain.VehicleDTO, error) {
	vehicle, err := s.getVehicle(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	applyVehicleRequest(vehicle, req)

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

// Delete removes a vehicle and its documents. Stored files are removed
// best-effort: failures are logged and the delete proceeds.
func (s *VehicleService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	vehicle, err := s.getVehicle(ctx, orgID, id)
	if err != nil {
		return err
	}

	count, err := s.vehicleRepo.CountReferences(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to count vehicle references: %w", err)
	}
	if count > 0 {
		return ErrVehicleInUse
	}

	if err := s.vehicleRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	var cleanupErrs []error
	for _, doc := range vehicle.Documents {
		if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
			cleanupErrs = append(cleanupErrs, fmt.Errorf("%s: %w", doc.StoragePath, err))
		}
	}
	if len(cleanupErrs) > 0 {
		s.logger.Warn("Failed to delete some vehicle documents from storage",
			zap.String("organization_id", orgID.String()),
			zap.String("vehicle_id", id.String()),
			zap.Int("failed", len(cleanupErrs)),
			zap.Error(errors.Join(cleanupErrs...)))
	}

	return nil
}

func (s *VehicleService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, status *domain.VehicleStatus) (*domain.PaginatedResponse, error) {
	page, pageSize, _ = repository.Pagination(page, pageSize)

	vehicles, total, err := s.vehicleRepo.List(ctx, orgID, page, pageSize, search, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	dtos := make([]domain.VehicleDTO, len(vehicles))
	for i := range vehicles {
		dtos[i] = mapper.ToVehicleDTO(&vehicles[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}

// CheckAvailability lists the SENT or ACCEPTED rental quotes overlapping [start, end].
// The result is advisory; nothing prevents overlapping quotes from being created.
func (s *VehicleService) CheckAvailability(ctx context.Context, orgID, vehicleID uuid.UUID, start, end time.Time) (*domain.AvailabilityDTO, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.getVehicle(ctx, orgID, vehicleID); err != nil {
		return nil, err
	}

	quotes, err := s.quoteRepo.FindRentalConflicts(ctx, orgID, vehicleID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle availability: %w", err)
	}

	conflicts := make([]domain.AvailabilityConflictDTO, len(quotes))
	for i := range quotes {
		conflicts[i] = mapper.ToAvailabilityConflictDTO(&quotes[i])
	}

	return &domain.AvailabilityDTO{
		VehicleID: vehicleID,
		Start:     start.Format("2006-01-02"),
		End:       end.Format("2006-01-02"),
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// ============================================================================
// Documents
// ============================================================================

// DocumentUpload carries an uploaded vehicle document
type DocumentUpload struct {
	Filename    string
	Type        string
	ContentType string
	ExpiresAt   *time.Time
	Data        io.Reader
}

// UploadDocument stores a file under vehicles/<id> and records it
func (s *VehicleService) UploadDocument(ctx context.Context, orgID, vehicleID uuid.UUID, upload *DocumentUpload) (*domain.VehicleDocumentDTO, error) {
	if _, err := s.getVehicle(ctx, orgID, vehicleID); err != nil {
		return nil, err
	}

	stored, err := s.storage.Save(ctx, orgID, "vehicles/"+vehicleID.String(), upload.Filename, upload.ContentType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store vehicle document: %w", err)
	}

	doc := &domain.VehicleDocument{
		VehicleID:   vehicleID,
		Name:        upload.Filename,
		Type:        upload.Type,
		StoragePath: stored.Path,
		MimeType:    stored.MimeType,
		Size:        stored.Size,
		ExpiresAt:   upload.ExpiresAt,
	}

	if err := s.vehicleRepo.CreateDocument(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, stored.Path); delErr != nil {
			s.logger.Warn("Failed to remove orphaned vehicle document",
				zap.String("path", stored.Path),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save vehicle document: %w", err)
	}

	dto := mapper.ToVehicleDocumentDTO(doc)
	return &dto, nil
}

func (s *VehicleService) ListDocuments(ctx context.Context, orgID, vehicleID uuid.UUID) ([]domain.VehicleDocumentDTO, error) {
	if _, err := s.getVehicle(ctx, orgID, vehicleID); err != nil {
		return nil, err
	}

	docs, err := s.vehicleRepo.ListDocuments(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle documents: %w", err)
	}

	dtos := make([]domain.VehicleDocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToVehicleDocumentDTO(&docs[i])
	}
	return dtos, nil
}

func (s *VehicleService) getDocument(ctx context.Context, orgID, vehicleID, docID uuid.UUID) (*domain.VehicleDocument, error) {
	if _, err := s.getVehicle(ctx, orgID, vehicleID); err != nil {
		return nil, err
	}
	doc, err := s.vehicleRepo.GetDocument(ctx, vehicleID, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle document: %w", err)
	}
	return doc, nil
}

// DownloadDocument returns the document metadata and its content. The caller closes the reader.
func (s *VehicleService) DownloadDocument(ctx context.Context, orgID, vehicleID, docID uuid.UUID) (*domain.VehicleDocumentDTO, io.ReadCloser, error) {
	doc, err := s.getDocument(ctx, orgID, vehicleID, docID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Read(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, ErrVehicleDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to read vehicle document: %w", err)
	}

	dto := mapper.ToVehicleDocumentDTO(doc)
	return &dto, content, nil
}

// DeleteDocument removes the record; the stored file is removed best-effort
func (s *VehicleService) DeleteDocument(ctx context.Context, orgID, vehicleID, docID uuid.UUID) error {
	doc, err := s.getDocument(ctx, orgID, vehicleID, docID)
	if err != nil {
		return err
	}

	if err := s.vehicleRepo.DeleteDocument(ctx, vehicleID, docID); err != nil {
		return fmt.Errorf("failed to delete vehicle document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("Failed to delete vehicle document from storage",
			zap.String("vehicle_id", vehicleID.String()),
			zap.String("path", doc.StoragePath),
			zap.Error(err))
	}

	return nil
}
