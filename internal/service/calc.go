package service

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
)

// LineAmounts holds the derived money fields of a document line
type LineAmounts struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalcLine derives the amounts of a priced line. Subtotal and tax are rounded
// independently, so the total is always their exact sum.
func CalcLine(quantity, unitPrice, discountPct, taxRatePct decimal.Decimal) LineAmounts {
	factor := decimal.NewFromInt(1).Sub(domain.Percent(discountPct))
	subtotal := domain.Round2(quantity.Mul(unitPrice).Mul(factor))
	taxAmount := domain.Round2(subtotal.Mul(domain.Percent(taxRatePct)))
	return LineAmounts{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
}

// lineDiscount is the amount removed from the gross price by the line discount
func lineDiscount(quantity, unitPrice decimal.Decimal, subtotal decimal.Decimal) decimal.Decimal {
	return domain.Round2(quantity.Mul(unitPrice)).Sub(subtotal)
}

// DocumentTotals holds the aggregated money fields of a quote or invoice
type DocumentTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

func (t *DocumentTotals) add(quantity, unitPrice, subtotal, taxAmount, total decimal.Decimal) {
	t.Subtotal = t.Subtotal.Add(subtotal)
	t.DiscountAmount = t.DiscountAmount.Add(lineDiscount(quantity, unitPrice, subtotal))
	t.TaxAmount = t.TaxAmount.Add(taxAmount)
	t.Total = t.Total.Add(total)
}

// SumQuoteLines re-sums every non-section line
func SumQuoteLines(lines []domain.QuoteLine) DocumentTotals {
	var t DocumentTotals
	for _, l := range lines {
		if l.IsSection {
			continue
		}
		t.add(l.Quantity, l.UnitPrice, l.Subtotal, l.TaxAmount, l.Total)
	}
	return t
}

// SumInvoiceLines re-sums every non-section line
func SumInvoiceLines(lines []domain.InvoiceLine) DocumentTotals {
	var t DocumentTotals
	for _, l := range lines {
		if l.IsSection {
			continue
		}
		t.add(l.Quantity, l.UnitPrice, l.Subtotal, l.TaxAmount, l.Total)
	}
	return t
}

// DeliveryCost prices a delivery: the fixed part plus the distance, driven twice on a round trip
func DeliveryCost(distanceKm, pricePerKm, fixedPrice decimal.Decimal, hasReturn bool) decimal.Decimal {
	effective := distanceKm
	if hasReturn {
		effective = distanceKm.Mul(decimal.NewFromInt(2))
	}
	return domain.Round2(fixedPrice.Add(effective.Mul(pricePerKm)))
}

// ExpenseAmounts derives the HT, tax and TTC amounts of an expense from
// whichever amount was supplied. HT wins when both are given.
func ExpenseAmounts(amountHT, amountTTC *decimal.Decimal, taxRatePct decimal.Decimal) (ht, tax, ttc decimal.Decimal, err error) {
	switch {
	case amountHT != nil:
		ht = domain.Round2(*amountHT)
		tax = domain.Round2(ht.Mul(domain.Percent(taxRatePct)))
		return ht, tax, ht.Add(tax), nil
	case amountTTC != nil:
		ttc = domain.Round2(*amountTTC)
		divisor := decimal.NewFromInt(1).Add(domain.Percent(taxRatePct))
		ht = domain.Round2(ttc.DivRound(divisor, 8))
		return ht, ttc.Sub(ht), ttc, nil
	default:
		return decimal.Zero, decimal.Zero, decimal.Zero, ErrInvalidAmounts
	}
}
