package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/render"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService owns the quote aggregate: header, lines, totals and status.
// Totals are always re-summed from the stored lines inside the transaction
// that changed them, with the quote row locked.
type QuoteService struct {
	db           *gorm.DB
	quoteRepo    *repository.QuoteRepository
	customerRepo *repository.CustomerRepository
	vehicleRepo  *repository.VehicleRepository
	orgRepo      *repository.OrganizationRepository
	numbering    *NumberingService
	lines        *lineResolver
	logger       *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	db *gorm.DB,
	quoteRepo *repository.QuoteRepository,
	customerRepo *repository.CustomerRepository,
	vehicleRepo *repository.VehicleRepository,
	productRepo *repository.ProductRepository,
	orgRepo *repository.OrganizationRepository,
	taxService *TaxService,
	numbering *NumberingService,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		db:           db,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		orgRepo:      orgRepo,
		numbering:    numbering,
		lines:        &lineResolver{productRepo: productRepo, taxes: taxService},
		logger:       logger,
	}
}

func (s *QuoteService) verifyReferences(ctx context.Context, orgID, customerID uuid.UUID, vehicleID *uuid.UUID) error {
	if _, err := s.customerRepo.GetByID(ctx, orgID, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to verify customer: %w", err)
	}
	if vehicleID != nil {
		if _, err := s.vehicleRepo.GetByID(ctx, orgID, *vehicleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("failed to verify vehicle: %w", err)
		}
	}
	return nil
}

func checkRentalPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}

// lockEditable locks the quote row and rejects accepted quotes
func lockEditable(ctx context.Context, repo *repository.QuoteRepository, orgID, id uuid.UUID) (*domain.Quote, error) {
	quote, err := repo.GetForUpdate(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.IsLocked() {
		return nil, ErrQuoteAccepted
	}
	return quote, nil
}

// recalculateTotals re-sums every stored line of the quote and writes the totals
func recalculateTotals(ctx context.Context, repo *repository.QuoteRepository, quoteID uuid.UUID) error {
	lines, err := repo.ListLines(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("failed to load quote lines: %w", err)
	}
	totals := SumQuoteLines(lines)
	if err := repo.UpdateTotals(ctx, quoteID, totals.Subtotal, totals.DiscountAmount, totals.TaxAmount, totals.Total); err != nil {
		return fmt.Errorf("failed to update quote totals: %w", err)
	}
	return nil
}

// Create allocates a number from the series of the quote type and stores the
// quote as DRAFT together with any initial lines.
func (s *QuoteService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	if err := checkRentalPeriod(req.RentalStartDate, req.RentalEndDate); err != nil {
		return nil, err
	}
	if err := s.verifyReferences(ctx, orgID, req.CustomerID, req.VehicleID); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	quote := &domain.Quote{
		OrganizationID:  orgID,
		Type:            req.Type,
		Status:          domain.QuoteStatusDraft,
		Date:            date,
		ValidUntil:      req.ValidUntil,
		CustomerID:      req.CustomerID,
		VehicleID:       req.VehicleID,
		RentalStartDate: req.RentalStartDate,
		RentalEndDate:   req.RentalEndDate,
		IncludedKm:      req.IncludedKm,
		ExtraKmRate:     domain.NullRate(req.ExtraKmRate),
		CustomerNotes:   req.CustomerNotes,
		InternalNotes:   req.InternalNotes,
		Terms:           req.Terms,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbering.Allocate(ctx, tx, orgID, req.Type.DocumentType())
		if err != nil {
			return err
		}
		quote.Number = number

		for i := range req.Lines {
			priced, err := s.lines.resolve(ctx, tx, orgID, &req.Lines[i])
			if err != nil {
				return err
			}
			var line domain.QuoteLine
			priced.applyToQuoteLine(&line)
			line.Order = i
			if req.Lines[i].Order != nil {
				line.Order = *req.Lines[i].Order
			}
			quote.Lines = append(quote.Lines, line)
		}

		totals := SumQuoteLines(quote.Lines)
		quote.Subtotal = totals.Subtotal
		quote.DiscountAmount = totals.DiscountAmount
		quote.TaxAmount = totals.TaxAmount
		quote.Total = totals.Total

		if err := s.quoteRepo.WithTx(tx).Create(ctx, quote); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote created",
		zap.String("organization_id", orgID.String()),
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number))

	return s.GetByID(ctx, orgID, quote.ID)
}

func (s *QuoteService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) List(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize, _ = repository.Pagination(page, pageSize)

	quotes, total, err := s.quoteRepo.List(ctx, orgID, filters, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}

// Update changes the quote header. Totals are left untouched.
func (s *QuoteService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	if err := checkRentalPeriod(req.RentalStartDate, req.RentalEndDate); err != nil {
		return nil, err
	}
	// the row lock below re-checks the status before writing
	current, err := s.quoteRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if current.IsLocked() {
		return nil, ErrQuoteAccepted
	}
	if err := s.verifyReferences(ctx, orgID, req.CustomerID, req.VehicleID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		quote, err := lockEditable(ctx, repo, orgID, id)
		if err != nil {
			return err
		}

		quote.CustomerID = req.CustomerID
		quote.VehicleID = req.VehicleID
		if req.Date != nil {
			quote.Date = *req.Date
		}
		quote.ValidUntil = req.ValidUntil
		quote.RentalStartDate = req.RentalStartDate
		quote.RentalEndDate = req.RentalEndDate
		quote.IncludedKm = req.IncludedKm
		quote.ExtraKmRate = domain.NullRate(req.ExtraKmRate)
		quote.CustomerNotes = req.CustomerNotes
		quote.InternalNotes = req.InternalNotes
		quote.Terms = req.Terms

		if err := repo.Update(ctx, quote); err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, id)
}

// Delete removes a quote with its lines and delivery unless an invoice was created from it
func (s *QuoteService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		if _, err := repo.GetForUpdate(ctx, orgID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteNotFound
			}
			return fmt.Errorf("failed to get quote: %w", err)
		}

		count, err := repo.CountInvoices(ctx, orgID, id)
		if err != nil {
			return fmt.Errorf("failed to count quote invoices: %w", err)
		}
		if count > 0 {
			return ErrQuoteInvoiced
		}

		if err := repo.Delete(ctx, orgID, id); err != nil {
			return fmt.Errorf("failed to delete quote: %w", err)
		}
		return nil
	})
}

// ChangeStatus moves the quote to any status, except that an accepted quote stays accepted
func (s *QuoteService) ChangeStatus(ctx context.Context, orgID, id uuid.UUID, status domain.QuoteStatus) (*domain.QuoteDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown quote status %q", ErrInvalidInput, status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		quote, err := repo.GetForUpdate(ctx, orgID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteNotFound
			}
			return fmt.Errorf("failed to get quote: %w", err)
		}
		if quote.IsLocked() && status != domain.QuoteStatusAccepted {
			return ErrQuoteAccepted
		}
		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return fmt.Errorf("failed to update quote status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote status changed",
		zap.String("organization_id", orgID.String()),
		zap.String("quote_id", id.String()),
		zap.String("status", string(status)))

	return s.GetByID(ctx, orgID, id)
}

// Duplicate copies a quote and all of its lines under a new number as DRAFT.
// The delivery is not copied.
func (s *QuoteService) Duplicate(ctx context.Context, orgID, id uuid.UUID) (*domain.QuoteDTO, error) {
	source, err := s.quoteRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	copied := &domain.Quote{
		OrganizationID:  orgID,
		Type:            source.Type,
		Status:          domain.QuoteStatusDraft,
		Date:            time.Now().UTC(),
		ValidUntil:      source.ValidUntil,
		CustomerID:      source.CustomerID,
		VehicleID:       source.VehicleID,
		RentalStartDate: source.RentalStartDate,
		RentalEndDate:   source.RentalEndDate,
		IncludedKm:      source.IncludedKm,
		ExtraKmRate:     source.ExtraKmRate,
		Subtotal:        source.Subtotal,
		DiscountAmount:  source.DiscountAmount,
		TaxAmount:       source.TaxAmount,
		Total:           source.Total,
		CustomerNotes:   source.CustomerNotes,
		InternalNotes:   source.InternalNotes,
		Terms:           source.Terms,
	}
	for _, line := range source.Lines {
		copied.Lines = append(copied.Lines, domain.QuoteLine{
			ProductID:   line.ProductID,
			IsSection:   line.IsSection,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			TaxID:       line.TaxID,
			Subtotal:    line.Subtotal,
			TaxAmount:   line.TaxAmount,
			Total:       line.Total,
			Order:       line.Order,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbering.Allocate(ctx, tx, orgID, copied.Type.DocumentType())
		if err != nil {
			return err
		}
		copied.Number = number
		if err := s.quoteRepo.WithTx(tx).Create(ctx, copied); err != nil {
			return fmt.Errorf("failed to duplicate quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote duplicated",
		zap.String("organization_id", orgID.String()),
		zap.String("source_quote_id", id.String()),
		zap.String("quote_id", copied.ID.String()),
		zap.String("number", copied.Number))

	return s.GetByID(ctx, orgID, copied.ID)
}

// ============================================================================
// Lines
// ============================================================================

// AddLine appends a line and re-sums the quote
func (s *QuoteService) AddLine(ctx context.Context, orgID, quoteID uuid.UUID, req *domain.LineRequest) (*domain.QuoteDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		if _, err := lockEditable(ctx, repo, orgID, quoteID); err != nil {
			return err
		}

		priced, err := s.lines.resolve(ctx, tx, orgID, req)
		if err != nil {
			return err
		}

		line := &domain.QuoteLine{QuoteID: quoteID}
		priced.applyToQuoteLine(line)
		if req.Order != nil {
			line.Order = *req.Order
		} else {
			next, err := repo.NextLineOrder(ctx, quoteID)
			if err != nil {
				return fmt.Errorf("failed to get next line position: %w", err)
			}
			line.Order = next
		}

		if err := repo.CreateLine(ctx, line); err != nil {
			return fmt.Errorf("failed to create quote line: %w", err)
		}
		return recalculateTotals(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, quoteID)
}

// UpdateLine replaces a line's content and re-sums the quote
func (s *QuoteService) UpdateLine(ctx context.Context, orgID, quoteID, lineID uuid.UUID, req *domain.LineRequest) (*domain.QuoteDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		if _, err := lockEditable(ctx, repo, orgID, quoteID); err != nil {
			return err
		}

		line, err := repo.GetLine(ctx, quoteID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteLineNotFound
			}
			return fmt.Errorf("failed to get quote line: %w", err)
		}

		priced, err := s.lines.resolve(ctx, tx, orgID, req)
		if err != nil {
			return err
		}
		priced.applyToQuoteLine(line)
		if req.Order != nil {
			line.Order = *req.Order
		}

		if err := repo.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("failed to update quote line: %w", err)
		}
		return recalculateTotals(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, quoteID)
}

// RemoveLine deletes a line and re-sums the quote
func (s *QuoteService) RemoveLine(ctx context.Context, orgID, quoteID, lineID uuid.UUID) (*domain.QuoteDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)
		if _, err := lockEditable(ctx, repo, orgID, quoteID); err != nil {
			return err
		}

		if _, err := repo.GetLine(ctx, quoteID, lineID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteLineNotFound
			}
			return fmt.Errorf("failed to get quote line: %w", err)
		}

		if err := repo.DeleteLine(ctx, quoteID, lineID); err != nil {
			return fmt.Errorf("failed to delete quote line: %w", err)
		}
		return recalculateTotals(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, quoteID)
}

// ============================================================================
// Exports
// ============================================================================

// RenderPDF renders a quote with the organization letterhead
func (s *QuoteService) RenderPDF(ctx context.Context, orgID, id uuid.UUID) ([]byte, string, error) {
	quote, err := s.quoteRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrQuoteNotFound
		}
		return nil, "", fmt.Errorf("failed to get quote: %w", err)
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrOrganizationNotFound
		}
		return nil, "", fmt.Errorf("failed to get organization: %w", err)
	}

	data, err := render.QuotePDF(org, quote)
	if err != nil {
		s.logger.Error("Failed to render quote PDF",
			zap.String("quote_id", id.String()),
			zap.Error(err))
		return nil, "", fmt.Errorf("failed to render quote pdf: %w", err)
	}

	return data, quote.Number + ".pdf", nil
}

// ExportCSV renders the filtered quotes as a semicolon separated sheet
func (s *QuoteService) ExportCSV(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters) ([]byte, error) {
	quotes, err := s.quoteRepo.ListForExport(ctx, orgID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes for export: %w", err)
	}
	return render.QuotesCSV(quotes)
}

// ExportXLSX renders the filtered quotes as a spreadsheet
func (s *QuoteService) ExportXLSX(ctx context.Context, orgID uuid.UUID, filters *domain.QuoteFilters) ([]byte, error) {
	quotes, err := s.quoteRepo.ListForExport(ctx, orgID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes for export: %w", err)
	}
	return render.QuotesXLSX(quotes)
}
