package metrics

import (
	"github.com/shopspring/decimal"

	"stockboard/internal/quote"
)

// Row is one projected label/value pair, ready for display. Values are final
// display strings; all formatting lives here and nowhere upstream.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Headline projects the fixed set of headline metric cards. Order is stable:
// Market Cap, PE Ratio, Dividend Yield, 52 Week High, 52 Week Low, Volume.
func Headline(q quote.Quote) []Row {
	return []Row{
		{"Market Cap", FormatAbbreviated(q.MarketCap)},
		{"PE Ratio", ratio(q.TrailingPE)},
		{"Dividend Yield", percent(q.DividendYield)},
		{"52 Week High", money(q.Market, q.FiftyTwoWeekHigh)},
		{"52 Week Low", money(q.Market, q.FiftyTwoWeekLow)},
		{"Volume", volume(q.Volume)},
	}
}

// Financials projects the fixed financial table. Order is stable: Revenue,
// Gross Profit, Operating Margin, Return on Equity, Debt to Equity,
// Current Ratio.
func Financials(q quote.Quote) []Row {
	return []Row{
		{"Revenue", FormatAbbreviated(q.TotalRevenue)},
		{"Gross Profit", FormatAbbreviated(q.GrossProfit)},
		{"Operating Margin", percent(q.OperatingMargin)},
		{"Return on Equity", percent(q.ReturnOnEquity)},
		{"Debt to Equity", ratio(q.DebtToEquity)},
		{"Current Ratio", ratio(q.CurrentRatio)},
	}
}

// ratio renders a plain two-decimal number with no suffix.
func ratio(v *decimal.Decimal) string {
	if v == nil {
		return notAvailable
	}
	return v.StringFixed(2)
}

// percent renders a 0-1 fraction as a percentage with two decimals.
func percent(v *decimal.Decimal) string {
	if v == nil {
		return notAvailable
	}
	return v.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// money prefixes the currency symbol for the quote's market. The market alone
// decides the symbol; an absent value renders plain "N/A" with no prefix.
func money(m quote.Market, v *decimal.Decimal) string {
	if v == nil {
		return notAvailable
	}
	return m.CurrencySymbol() + v.StringFixed(2)
}

func volume(v *int64) string {
	if v == nil {
		return notAvailable
	}
	d := decimal.NewFromInt(*v)
	return FormatAbbreviated(&d)
}
