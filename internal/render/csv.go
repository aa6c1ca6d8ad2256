package render

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/straye-as/backoffice-api/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// QuotesCSV renders quotes as a semicolon separated sheet prefixed with a
// UTF-8 byte order mark.
func QuotesCSV(quotes []domain.Quote) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}

	for i := range quotes {
		q := &quotes[i]
		record := []string{
			q.Number,
			formatDate(q.Date),
			formatOptionalDate(q.ValidUntil),
			TypeLabel(q.Type),
			StatusLabel(q.Status),
			customerName(q),
			customerVAT(q),
			money(q.Subtotal),
			money(q.TaxAmount),
			money(q.Total),
			strconv.Itoa(len(q.Lines)),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
