package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService owns invoices with their lines and payments. The paid amount
// and the payment-derived status are re-summed from the stored payments on
// every payment change.
type InvoiceService struct {
	db           *gorm.DB
	invoiceRepo  *repository.InvoiceRepository
	quoteRepo    *repository.QuoteRepository
	customerRepo *repository.CustomerRepository
	numbering    *NumberingService
	lines        *lineResolver
	logger       *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo *repository.InvoiceRepository,
	quoteRepo *repository.QuoteRepository,
	customerRepo *repository.CustomerRepository,
	productRepo *repository.ProductRepository,
	taxService *TaxService,
	numbering *NumberingService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		db:           db,
		invoiceRepo:  invoiceRepo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		numbering:    numbering,
		lines:        &lineResolver{productRepo: productRepo, taxes: taxService},
		logger:       logger,
	}
}

// PaymentStatus derives the invoice status from the paid amount. A cancelled
// invoice keeps its status, and nothing changes while nothing is paid.
func PaymentStatus(current domain.InvoiceStatus, paid, total decimal.Decimal) domain.InvoiceStatus {
	if current == domain.InvoiceStatusCancelled {
		return current
	}
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.InvoiceStatusPaid
	case paid.IsPositive():
		return domain.InvoiceStatusPartial
	default:
		return current
	}
}

// Create stores a standalone invoice priced from the request lines
func (s *InvoiceService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	if _, err := s.customerRepo.GetByID(ctx, orgID, req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	invoice := &domain.Invoice{
		OrganizationID: orgID,
		CustomerID:     req.CustomerID,
		Status:         domain.InvoiceStatusDraft,
		Date:           date,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
		PaymentTerms:   req.PaymentTerms,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbering.Allocate(ctx, tx, orgID, domain.DocumentTypeInvoice)
		if err != nil {
			return err
		}
		invoice.Number = number

		for i := range req.Lines {
			priced, err := s.lines.resolve(ctx, tx, orgID, &req.Lines[i])
			if err != nil {
				return err
			}
			order := i
			if req.Lines[i].Order != nil {
				order = *req.Lines[i].Order
			}
			invoice.Lines = append(invoice.Lines, priced.toInvoiceLine(order))
		}

		totals := SumInvoiceLines(invoice.Lines)
		invoice.Subtotal = totals.Subtotal
		invoice.DiscountAmount = totals.DiscountAmount
		invoice.TaxAmount = totals.TaxAmount
		invoice.Total = totals.Total

		if err := s.invoiceRepo.WithTx(tx).Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("organization_id", orgID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))

	return s.GetByID(ctx, orgID, invoice.ID)
}

// CreateFromQuote converts an accepted quote. Totals and lines are copied
// as they are, without repricing.
func (s *InvoiceService) CreateFromQuote(ctx context.Context, orgID, quoteID uuid.UUID, req *domain.CreateInvoiceFromQuoteRequest) (*domain.InvoiceDTO, error) {
	if req == nil {
		req = &domain.CreateInvoiceFromQuoteRequest{}
	}

	var invoice *domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.quoteRepo.WithTx(tx).GetByID(ctx, orgID, quoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteNotFound
			}
			return fmt.Errorf("failed to get quote: %w", err)
		}
		if quote.Status != domain.QuoteStatusAccepted {
			return ErrQuoteNotAccepted
		}

		number, err := s.numbering.Allocate(ctx, tx, orgID, domain.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		invoice = &domain.Invoice{
			OrganizationID: orgID,
			Number:         number,
			CustomerID:     quote.CustomerID,
			QuoteID:        &quote.ID,
			Status:         domain.InvoiceStatusDraft,
			Date:           time.Now().UTC(),
			DueDate:        req.DueDate,
			Subtotal:       quote.Subtotal,
			DiscountAmount: quote.DiscountAmount,
			TaxAmount:      quote.TaxAmount,
			Total:          quote.Total,
			Notes:          req.Notes,
			PaymentTerms:   req.PaymentTerms,
			Lines:          make([]domain.InvoiceLine, 0, len(quote.Lines)),
		}
		for _, l := range quote.Lines {
			invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
				ProductID:   l.ProductID,
				IsSection:   l.IsSection,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Discount:    l.Discount,
				TaxID:       l.TaxID,
				Subtotal:    l.Subtotal,
				TaxAmount:   l.TaxAmount,
				Total:       l.Total,
				Order:       l.Order,
			})
		}

		if err := s.invoiceRepo.WithTx(tx).Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created from quote",
		zap.String("organization_id", orgID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("quote_id", quoteID.String()),
		zap.String("number", invoice.Number))

	return s.GetByID(ctx, orgID, invoice.ID)
}

func (s *InvoiceService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

func (s *InvoiceService) List(ctx context.Context, orgID uuid.UUID, filters *domain.InvoiceFilters, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize, _ = repository.Pagination(page, pageSize)

	invoices, total, err := s.invoiceRepo.List(ctx, orgID, filters, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}

// lockInvoice loads the invoice row for update inside a transaction
func lockInvoice(ctx context.Context, repo *repository.InvoiceRepository, orgID, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := repo.GetForUpdate(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// Update changes the due date, notes and payment terms
func (s *InvoiceService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		invoice, err := lockInvoice(ctx, repo, orgID, id)
		if err != nil {
			return err
		}

		invoice.DueDate = req.DueDate
		invoice.Notes = req.Notes
		invoice.PaymentTerms = req.PaymentTerms

		if err := repo.Update(ctx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, id)
}

// UpdateStatus sets the status by hand, for example SENT or CANCELLED
func (s *InvoiceService) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.InvoiceStatus) (*domain.InvoiceDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		invoice, err := lockInvoice(ctx, repo, orgID, id)
		if err != nil {
			return err
		}
		if err := repo.UpdatePaymentState(ctx, id, invoice.PaidAmount, status); err != nil {
			return fmt.Errorf("failed to update invoice status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice status changed",
		zap.String("organization_id", orgID.String()),
		zap.String("invoice_id", id.String()),
		zap.String("status", string(status)))

	return s.GetByID(ctx, orgID, id)
}

// Delete removes the invoice together with its lines and payments
func (s *InvoiceService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		if _, err := lockInvoice(ctx, repo, orgID, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, orgID, id); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return nil
	})
}

// ============================================================================
// Payments
// ============================================================================

// syncPayments re-sums the stored payments and writes the paid amount and status
func syncPayments(ctx context.Context, repo *repository.InvoiceRepository, invoice *domain.Invoice) error {
	payments, err := repo.ListPayments(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	status := PaymentStatus(invoice.Status, paid, invoice.Total)

	if err := repo.UpdatePaymentState(ctx, invoice.ID, paid, status); err != nil {
		return fmt.Errorf("failed to update invoice payment state: %w", err)
	}
	return nil
}

// AddPayment records a payment and refreshes the paid amount and status.
// A cancelled invoice still records payments and stays cancelled.
func (s *InvoiceService) AddPayment(ctx context.Context, orgID, invoiceID uuid.UUID, req *domain.CreatePaymentRequest) (*domain.InvoiceDTO, error) {
	amount := domain.Money(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		invoice, err := lockInvoice(ctx, repo, orgID, invoiceID)
		if err != nil {
			return err
		}
		payment := &domain.Payment{
			InvoiceID: invoiceID,
			Amount:    amount,
			Method:    req.Method,
			Reference: req.Reference,
			Date:      date,
			Notes:     req.Notes,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return syncPayments(ctx, repo, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("organization_id", orgID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", amount.StringFixed(2)))

	return s.GetByID(ctx, orgID, invoiceID)
}

// RemovePayment deletes a payment and refreshes the paid amount and status
func (s *InvoiceService) RemovePayment(ctx context.Context, orgID, invoiceID, paymentID uuid.UUID) (*domain.InvoiceDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		invoice, err := lockInvoice(ctx, repo, orgID, invoiceID)
		if err != nil {
			return err
		}

		if _, err := repo.GetPayment(ctx, invoiceID, paymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to get payment: %w", err)
		}
		if err := repo.DeletePayment(ctx, invoiceID, paymentID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}

		return syncPayments(ctx, repo, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orgID, invoiceID)
}

// ListPayments returns the payments of an invoice, newest first
func (s *InvoiceService) ListPayments(ctx context.Context, orgID, invoiceID uuid.UUID) ([]domain.PaymentDTO, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, orgID, invoiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	payments, err := s.invoiceRepo.ListPayments(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	dtos := make([]domain.PaymentDTO, len(payments))
	for i := range payments {
		dtos[i] = mapper.ToPaymentDTO(&payments[i])
	}
	return dtos, nil
}
