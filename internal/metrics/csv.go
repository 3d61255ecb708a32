package metrics

import (
	"encoding/csv"
	"io"

	"stockboard/internal/quote"
)

// WriteFinancialsCSV serializes the financial table as two-column CSV with a
// "Metric,Value" header. Values are the display strings as shown on screen,
// so the export always matches the rendered table, N/A rows included.
func WriteFinancialsCSV(w io.Writer, q quote.Quote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	for _, row := range Financials(q) {
		if err := cw.Write([]string{row.Label, row.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
