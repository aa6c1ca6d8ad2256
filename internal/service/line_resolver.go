package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/repository"
	"gorm.io/gorm"
)

// pricedLine is a line request after product defaults and the tax rate were applied
type pricedLine struct {
	ProductID   *uuid.UUID
	IsSection   bool
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxID       *uuid.UUID
	LineAmounts
}

// lineResolver prices quote and invoice lines
type lineResolver struct {
	productRepo *repository.ProductRepository
	taxes       *TaxService
}

// resolve fills missing description, price and tax from the referenced
// product, then computes the line amounts. Section lines carry no amounts.
func (r *lineResolver) resolve(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, req *domain.LineRequest) (*pricedLine, error) {
	line := &pricedLine{
		ProductID:   req.ProductID,
		IsSection:   req.IsSection,
		Description: strings.TrimSpace(req.Description),
		Quantity:    decimal.NewFromFloat(req.Quantity).Round(3),
		Discount:    domain.Money(req.Discount),
		TaxID:       req.TaxID,
	}
	if req.UnitPrice != nil {
		line.UnitPrice = domain.Rate(*req.UnitPrice)
	}

	if req.ProductID != nil {
		product, err := r.productRepo.WithTx(tx).GetByID(ctx, orgID, *req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if line.Description == "" {
			line.Description = product.Name
		}
		if req.UnitPrice == nil {
			line.UnitPrice = product.Price
		}
		if line.TaxID == nil {
			line.TaxID = product.TaxID
		}
	}

	if line.Description == "" {
		return nil, fmt.Errorf("%w: line description is required", ErrInvalidInput)
	}

	if line.IsSection {
		line.Quantity = decimal.Zero
		line.UnitPrice = decimal.Zero
		line.Discount = decimal.Zero
		line.TaxID = nil
		return line, nil
	}

	rate, err := r.taxes.rateWithin(ctx, tx, orgID, line.TaxID)
	if err != nil {
		return nil, err
	}
	line.LineAmounts = CalcLine(line.Quantity, line.UnitPrice, line.Discount, rate)

	return line, nil
}

func (l *pricedLine) applyToQuoteLine(dst *domain.QuoteLine) {
	dst.ProductID = l.ProductID
	dst.IsSection = l.IsSection
	dst.Description = l.Description
	dst.Quantity = l.Quantity
	dst.UnitPrice = l.UnitPrice
	dst.Discount = l.Discount
	dst.TaxID = l.TaxID
	dst.Subtotal = l.Subtotal
	dst.TaxAmount = l.TaxAmount
	dst.Total = l.Total
}

func (l *pricedLine) toInvoiceLine(order int) domain.InvoiceLine {
	return domain.InvoiceLine{
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
		Order:       order,
	}
}
