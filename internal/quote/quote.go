package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market identifies the exchange a quote was requested for. It is the sole
// source of truth for presentation concerns such as the currency symbol;
// nothing downstream may re-derive the market from the traded symbol.
type Market string

const (
	US  Market = "US"
	NSE Market = "NSE"
	BSE Market = "BSE"
)

// ParseMarket maps user input to a Market.
func ParseMarket(s string) (Market, error) {
	switch Market(strings.ToUpper(strings.TrimSpace(s))) {
	case US:
		return US, nil
	case NSE:
		return NSE, nil
	case BSE:
		return BSE, nil
	}
	return "", fmt.Errorf("unknown market %q", s)
}

// CurrencySymbol returns the symbol the presentation layer prefixes
// currency-denominated values with.
func (m Market) CurrencySymbol() string {
	switch m {
	case NSE, BSE:
		return "₹"
	default:
		return "$"
	}
}

// Quote is the normalized shape produced by every source adapter.
// Optional fields are nil when the provider did not supply them; formatting
// renders nil as "N/A" and never substitutes a zero.
// Yield, margin and ROE are stored as fractions (0-1), not pre-multiplied.
type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Market Market `json:"market"`

	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	PreviousClose *decimal.Decimal `json:"previous_close,omitempty"`
	// ChangePercent is derived, never provider-native. See ChangePercent.
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`

	MarketCap *decimal.Decimal `json:"market_cap,omitempty"`
	Volume    *int64           `json:"volume,omitempty"`

	FiftyTwoWeekHigh *decimal.Decimal `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *decimal.Decimal `json:"fifty_two_week_low,omitempty"`

	TrailingPE      *decimal.Decimal `json:"trailing_pe,omitempty"`
	DividendYield   *decimal.Decimal `json:"dividend_yield,omitempty"`
	TotalRevenue    *decimal.Decimal `json:"total_revenue,omitempty"`
	GrossProfit     *decimal.Decimal `json:"gross_profit,omitempty"`
	OperatingMargin *decimal.Decimal `json:"operating_margin,omitempty"`
	ReturnOnEquity  *decimal.Decimal `json:"return_on_equity,omitempty"`
	DebtToEquity    *decimal.Decimal `json:"debt_to_equity,omitempty"`
	CurrentRatio    *decimal.Decimal `json:"current_ratio,omitempty"`
}

// Candle is one day of OHLCV data.
type Candle struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// History is a price series ordered ascending by date. Gaps are allowed;
// quality varies by source.
type History []Candle

// Snapshot bundles a normalized quote with its chartable history. It is the
// success payload every source adapter returns.
type Snapshot struct {
	Quote   Quote   `json:"quote"`
	History History `json:"history"`
}

// ChangePercent computes (last-prev)/prev*100, or nil when either input is
// missing or prev is zero. The guard is structural: a zero previous close can
// never produce NaN or Inf downstream.
func ChangePercent(last, prev *decimal.Decimal) *decimal.Decimal {
	if last == nil || prev == nil || prev.IsZero() {
		return nil
	}
	pct := last.Sub(*prev).Div(*prev).Mul(decimal.NewFromInt(100))
	return &pct
}

// Num is a convenience for adapters building optional fields from parsed
// provider floats.
func Num(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
