package render

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	quotesSheet = "Devis"
	currencyFmt = `#,##0.00 "€"`
	headerColor = "2563EB"
	stripeColor = "F8FAFC"
	totalsColor = "DBEAFE"
	borderColor = "E2E8F0"
)

var columnWidths = []float64{15, 12, 15, 12, 12, 30, 18, 15, 12, 15, 12}

// money columns H..J (1-based 8..10)
const firstMoneyCol, lastMoneyCol = 8, 10

type rowStyles struct {
	text  int
	money int
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: borderColor, Style: 1},
		{Type: "top", Color: borderColor, Style: 1},
		{Type: "right", Color: borderColor, Style: 1},
		{Type: "bottom", Color: borderColor, Style: 1},
	}
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newRowStyles(f *excelize.File, fill *excelize.Fill, font *excelize.Font) (rowStyles, error) {
	numFmt := currencyFmt
	text := &excelize.Style{Border: borders(), Font: font}
	amount := &excelize.Style{Border: borders(), Font: font, CustomNumFmt: &numFmt}
	if fill != nil {
		text.Fill = *fill
		amount.Fill = *fill
	}

	var rs rowStyles
	var err error
	if rs.text, err = f.NewStyle(text); err != nil {
		return rs, err
	}
	if rs.money, err = f.NewStyle(amount); err != nil {
		return rs, err
	}
	return rs, nil
}

func styleRow(f *excelize.File, row int, rs rowStyles) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), row)
	if err := f.SetCellStyle(quotesSheet, first, last, rs.text); err != nil {
		return err
	}
	moneyFirst, _ := excelize.CoordinatesToCellName(firstMoneyCol, row)
	moneyLast, _ := excelize.CoordinatesToCellName(lastMoneyCol, row)
	return f.SetCellStyle(quotesSheet, moneyFirst, moneyLast, rs.money)
}

// QuotesXLSX renders quotes on a "Devis" sheet with a styled header, striped
// rows, currency formatting and a totals row.
func QuotesXLSX(quotes []domain.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quotesSheet); err != nil {
		return nil, err
	}
	tab := headerColor
	if err := f.SetSheetProps(quotesSheet, &excelize.SheetPropsOptions{TabColorRGB: &tab}); err != nil {
		return nil, err
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(quotesSheet, col, col, width); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      solid(headerColor),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders(),
	})
	if err != nil {
		return nil, err
	}
	plain, err := newRowStyles(f, nil, nil)
	if err != nil {
		return nil, err
	}
	stripeFill := solid(stripeColor)
	striped, err := newRowStyles(f, &stripeFill, nil)
	if err != nil {
		return nil, err
	}
	totalsFill := solid(totalsColor)
	totals, err := newRowStyles(f, &totalsFill, &excelize.Font{Bold: true})
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(quotesSheet, "A1", &header); err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(quotesSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetRowHeight(quotesSheet, 1, 25); err != nil {
		return nil, err
	}

	var sumSubtotal, sumTax, sumTotal decimal.Decimal
	for i := range quotes {
		q := &quotes[i]
		row := i + 2
		values := []interface{}{
			q.Number,
			formatDate(q.Date),
			formatOptionalDate(q.ValidUntil),
			TypeLabel(q.Type),
			StatusLabel(q.Status),
			customerName(q),
			customerVAT(q),
			q.Subtotal.InexactFloat64(),
			q.TaxAmount.InexactFloat64(),
			q.Total.InexactFloat64(),
			len(q.Lines),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(quotesSheet, cell, &values); err != nil {
			return nil, err
		}

		rs := plain
		if i%2 == 0 {
			rs = striped
		}
		if err := styleRow(f, row, rs); err != nil {
			return nil, err
		}

		sumSubtotal = sumSubtotal.Add(q.Subtotal)
		sumTax = sumTax.Add(q.TaxAmount)
		sumTotal = sumTotal.Add(q.Total)
	}

	if len(quotes) > 0 {
		row := len(quotes) + 2
		values := []interface{}{
			"", "", "", "", "", "",
			"TOTAUX:",
			sumSubtotal.InexactFloat64(),
			sumTax.InexactFloat64(),
			sumTotal.InexactFloat64(),
			len(quotes),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(quotesSheet, cell, &values); err != nil {
			return nil, err
		}
		if err := styleRow(f, row, totals); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(quotesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
