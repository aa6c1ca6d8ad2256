// Package render produces the printable and spreadsheet projections of quotes.
// Labels are French, the language of the documents sent to customers.
package render

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/domain"
)

const dateLayout = "02/01/2006"

var quoteStatusLabels = map[domain.QuoteStatus]string{
	domain.QuoteStatusDraft:    "Brouillon",
	domain.QuoteStatusSent:     "Envoyé",
	domain.QuoteStatusAccepted: "Accepté",
	domain.QuoteStatusRejected: "Refusé",
	domain.QuoteStatusExpired:  "Expiré",
}

// StatusLabel translates a quote status, falling back to the raw value
func StatusLabel(status domain.QuoteStatus) string {
	if label, ok := quoteStatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// TypeLabel translates a quote type
func TypeLabel(t domain.QuoteType) string {
	if t == domain.QuoteTypeSale {
		return "Vente"
	}
	return "Location"
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func customerName(q *domain.Quote) string {
	if q.Customer == nil {
		return ""
	}
	return q.Customer.DisplayName()
}

func customerVAT(q *domain.Quote) string {
	if q.Customer == nil {
		return ""
	}
	return q.Customer.VATNumber
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// exportHeaders are the columns shared by the CSV and XLSX exports
var exportHeaders = []string{
	"Numéro",
	"Date",
	"Valable jusqu'au",
	"Type",
	"Statut",
	"Client",
	"N° TVA Client",
	"Sous-total HT",
	"TVA",
	"Total TTC",
	"Nb. Lignes",
}
