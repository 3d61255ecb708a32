package metrics

import "github.com/shopspring/decimal"

// notAvailable is the sentinel rendered for every absent value. Formatting
// never substitutes a zero that could be mistaken for real data.
const notAvailable = "N/A"

var suffixes = [...]string{"", "K", "M", "B", "T"}

// FormatAbbreviated renders a large magnitude as a human-readable string with
// a K/M/B/T suffix and exactly two decimal places, preserving sign.
// Values beyond the trillions clamp at "T". A nil value renders "N/A".
func FormatAbbreviated(v *decimal.Decimal) string {
	if v == nil {
		return notAvailable
	}
	thousand := decimal.NewFromInt(1000)
	n := *v
	magnitude := 0
	for n.Abs().Cmp(thousand) >= 0 && magnitude < len(suffixes)-1 {
		n = n.Div(thousand)
		magnitude++
	}
	return n.StringFixed(2) + suffixes[magnitude]
}
