package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent turns a percentage such as 21 into the factor 0.21
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// Money converts a request amount to a decimal rounded to cents
func Money(f float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(f))
}

// NullMoney converts an optional request amount
func NullMoney(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Money(*f))
}

// Rate converts a per-unit price (unit price, price per km) keeping four
// decimals. Totals derived from it are rounded to cents.
func Rate(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(4)
}

// NullRate converts an optional per-unit price
func NullRate(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Rate(*f))
}

// NullToPtr exposes an optional decimal as a pointer for JSON responses
func NullToPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// NullOrZero returns the decimal value or zero when it is not set
func NullOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
