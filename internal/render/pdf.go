package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
)

var (
	primary   = &props.Color{Red: 37, Green: 99, Blue: 235}
	dark      = &props.Color{Red: 30, Green: 64, Blue: 175}
	muted     = &props.Color{Red: 100, Green: 116, Blue: 139}
	sectionBg = &props.Color{Red: 241, Green: 245, Blue: 249}
	tableHead = &props.Color{Red: 37, Green: 99, Blue: 235}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
)

func small(a align.Type) props.Text {
	return props.Text{Size: 8, Align: a, Color: muted}
}

func body(a align.Type) props.Text {
	return props.Text{Size: 9, Align: a}
}

func bold(size float64, a align.Type) props.Text {
	return props.Text{Size: size, Style: fontstyle.Bold, Align: a}
}

func amount(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func quoteTitle(t domain.QuoteType) string {
	if t == domain.QuoteTypeSale {
		return "Devis de Vente"
	}
	return "Devis de Location"
}

// QuotePDF renders a quote as an A4 document: letterhead, parties, rental
// terms, lines (sections as grey headers), delivery, totals and notes.
func QuotePDF(org *domain.Organization, quote *domain.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)
	currency := org.Currency
	if currency == "" {
		currency = "EUR"
	}

	m.AddRows(header(org, quote)...)
	m.AddRows(line.NewRow(4, props.Line{Color: primary, Thickness: 0.8}))
	m.AddRows(parties(org, quote)...)

	if quote.Type == domain.QuoteTypeRental {
		m.AddRows(rentalTerms(quote, currency)...)
	}

	m.AddRows(linesTable(quote.Lines, currency)...)

	if quote.Delivery != nil && quote.Delivery.Type == domain.DeliveryTypeWith {
		m.AddRows(deliveryBlock(quote.Delivery, currency)...)
	}

	m.AddRows(totalsBlock(quote, currency)...)

	if quote.CustomerNotes != "" {
		m.AddRows(
			text.NewRow(8, "Remarques", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3, Color: dark}),
			text.NewRow(12, quote.CustomerNotes, body(align.Left)),
		)
	}
	if quote.Terms != "" {
		m.AddRows(
			text.NewRow(8, "Conditions", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3, Color: dark}),
			text.NewRow(12, quote.Terms, small(align.Left)),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func header(org *domain.Organization, quote *domain.Quote) []core.Row {
	validity := ""
	if quote.ValidUntil != nil {
		validity = "Valable jusqu'au : " + formatDate(*quote.ValidUntil)
	}

	return []core.Row{
		row.New(10).Add(
			text.NewCol(7, org.Name, props.Text{Size: 16, Style: fontstyle.Bold, Color: primary}),
			text.NewCol(5, quoteTitle(quote.Type), props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right, Color: dark}),
		),
		row.New(5).Add(
			text.NewCol(7, joinNonEmpty(", ", org.Street, joinNonEmpty(" ", org.ZipCode, org.City)), small(align.Left)),
			text.NewCol(5, "N° "+quote.Number, bold(10, align.Right)),
		),
		row.New(5).Add(
			text.NewCol(7, joinNonEmpty(" - ", org.Email, org.Phone), small(align.Left)),
			text.NewCol(5, "Date : "+formatDate(quote.Date), small(align.Right)),
		),
		row.New(5).Add(
			text.NewCol(7, joinNonEmpty(" - ", vatLabel(org.VATNumber), ibanLabel(org.IBAN)), small(align.Left)),
			text.NewCol(5, validity, small(align.Right)),
		),
	}
}

func vatLabel(vat string) string {
	if vat == "" {
		return ""
	}
	return "TVA : " + vat
}

func ibanLabel(iban string) string {
	if iban == "" {
		return ""
	}
	return "IBAN : " + iban
}

func parties(org *domain.Organization, quote *domain.Quote) []core.Row {
	rows := []core.Row{
		row.New(8).Add(
			text.NewCol(6, "Émetteur", props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Color: dark}),
			text.NewCol(6, "Client", props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Color: dark}),
		),
	}

	c := quote.Customer
	if c == nil {
		c = &domain.Customer{}
	}
	left := []string{
		joinNonEmpty(" ", org.LegalName),
		joinNonEmpty(", ", org.Street, joinNonEmpty(" ", org.ZipCode, org.City)),
		vatLabel(org.VATNumber),
	}
	right := []string{
		c.DisplayName(),
		joinNonEmpty(", ", c.Street, joinNonEmpty(" ", c.ZipCode, c.City)),
		joinNonEmpty(" - ", vatLabel(c.VATNumber), c.Email, c.Phone),
	}
	if left[0] == "" {
		left[0] = org.Name
	}
	for i := range left {
		rows = append(rows, row.New(5).Add(
			text.NewCol(6, left[i], body(align.Left)),
			text.NewCol(6, right[i], body(align.Left)),
		))
	}
	return rows
}

func rentalTerms(quote *domain.Quote, currency string) []core.Row {
	period := joinNonEmpty(" au ", formatOptionalDate(quote.RentalStartDate), formatOptionalDate(quote.RentalEndDate))
	vehicle := ""
	if quote.Vehicle != nil {
		vehicle = joinNonEmpty(" - ", quote.Vehicle.Name, quote.Vehicle.LicensePlate)
	}
	km := ""
	if quote.IncludedKm != nil {
		km = fmt.Sprintf("%d km inclus", *quote.IncludedKm)
	}
	if quote.ExtraKmRate.Valid {
		km = joinNonEmpty(", ", km, amount(quote.ExtraKmRate.Decimal, currency)+" / km supplémentaire")
	}

	return []core.Row{
		text.NewRow(8, "Location", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3, Color: dark}),
		row.New(5).Add(
			text.NewCol(4, "Période : "+period, body(align.Left)),
			text.NewCol(4, "Véhicule : "+vehicle, body(align.Left)),
			text.NewCol(4, km, body(align.Left)),
		),
	}
}

func linesTable(lines []domain.QuoteLine, currency string) []core.Row {
	headStyle := func(a align.Type) props.Text {
		return props.Text{Size: 8, Style: fontstyle.Bold, Align: a, Color: white, Top: 1.5}
	}

	rows := []core.Row{
		row.New(3),
		row.New(7).Add(
			text.NewCol(5, "Description", headStyle(align.Left)),
			text.NewCol(1, "Qté", headStyle(align.Right)),
			text.NewCol(2, "Prix unit.", headStyle(align.Right)),
			text.NewCol(1, "Rem.", headStyle(align.Right)),
			text.NewCol(3, "Total HT", headStyle(align.Right)),
		).WithStyle(&props.Cell{BackgroundColor: tableHead}),
	}

	for _, l := range lines {
		if l.IsSection {
			rows = append(rows, row.New(7).Add(
				col.New(12).Add(text.New(l.Description, props.Text{Size: 9, Style: fontstyle.Bold, Top: 1.5})),
			).WithStyle(&props.Cell{BackgroundColor: sectionBg}))
			continue
		}

		discount := ""
		if !l.Discount.IsZero() {
			discount = l.Discount.String() + " %"
		}
		rows = append(rows, row.New(6).Add(
			text.NewCol(5, l.Description, props.Text{Size: 9, Top: 1}),
			text.NewCol(1, l.Quantity.String(), props.Text{Size: 9, Top: 1, Align: align.Right}),
			text.NewCol(2, amount(l.UnitPrice, currency), props.Text{Size: 9, Top: 1, Align: align.Right}),
			text.NewCol(1, discount, props.Text{Size: 9, Top: 1, Align: align.Right}),
			text.NewCol(3, amount(l.Subtotal, currency), props.Text{Size: 9, Top: 1, Align: align.Right}),
		))
	}

	return append(rows, line.NewRow(2, props.Line{Color: muted, Thickness: 0.2}))
}

func deliveryBlock(d *domain.Delivery, currency string) []core.Row {
	details := joinNonEmpty(", ", d.Street, joinNonEmpty(" ", d.ZipCode, d.City), d.Country)
	when := ""
	if d.DeliveryDate != nil {
		when = "Date : " + formatDate(*d.DeliveryDate)
	}
	distance := ""
	if d.Distance.Valid {
		distance = d.Distance.Decimal.String() + " km"
		if d.HasReturn {
			distance += " (aller-retour)"
		}
	}

	return []core.Row{
		text.NewRow(8, "Livraison", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3, Color: dark}),
		row.New(5).Add(
			text.NewCol(6, details, body(align.Left)),
			text.NewCol(3, joinNonEmpty(" - ", when, distance), body(align.Left)),
			text.NewCol(3, amount(d.Cost, currency), bold(9, align.Right)),
		),
	}
}

func totalsBlock(quote *domain.Quote, currency string) []core.Row {
	totalRow := func(label, value string, style props.Text) core.Row {
		return row.New(6).Add(
			col.New(6),
			text.NewCol(3, label, style),
			text.NewCol(3, value, style),
		)
	}
	right := body(align.Right)

	rows := []core.Row{row.New(3)}
	if !quote.DiscountAmount.IsZero() {
		rows = append(rows, totalRow("Remise", "- "+amount(quote.DiscountAmount, currency), right))
	}
	rows = append(rows,
		totalRow("Sous-total HT", amount(quote.Subtotal, currency), right),
		totalRow("TVA", amount(quote.TaxAmount, currency), right),
		totalRow("Total TTC", amount(quote.Total, currency), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: primary}),
	)
	return rows
}
