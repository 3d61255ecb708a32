package yahooadapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockboard/internal/quote"
	"stockboard/internal/source"
	"stockboard/internal/source/yahoo"
)

type Config struct {
	Name string // display name, default: Yahoo
	// Suffix is appended to every symbol before lookup, e.g. ".NS" or ".BO"
	// for Indian listings of the same ticker namespace.
	Suffix string
	// HistoryRange is the chart range, default: 1y.
	HistoryRange string
}

// Adapter converts Yahoo chart + quoteSummary payloads into the normalized
// snapshot shape. It is the general-market source: transport and lookup
// failures are network errors, but a well-formed sparse payload is still a
// valid quote with absent fields.
type Adapter struct {
	cfg    Config
	client *yahoo.Client
}

func New(cfg Config, client *yahoo.Client) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if cfg.HistoryRange == "" {
		cfg.HistoryRange = "1y"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Fetch(ctx context.Context, symbol string) (quote.Snapshot, error) {
	lookup := symbol + a.cfg.Suffix

	chart, err := a.client.GetChart(ctx, lookup, a.cfg.HistoryRange)
	if err != nil {
		return quote.Snapshot{}, source.Errf(source.KindNetwork, "%s chart: %v", a.cfg.Name, err)
	}
	summary, err := a.client.GetQuoteSummary(ctx, lookup)
	if err != nil {
		return quote.Snapshot{}, source.Errf(source.KindNetwork, "%s summary: %v", a.cfg.Name, err)
	}

	q := quote.Quote{
		Symbol: symbol,
		Name:   displayName(chart, summary, symbol),

		CurrentPrice:  num(chart.RegularMarketPrice),
		PreviousClose: num(chart.PreviousClose),

		MarketCap:        num(summary.MarketCap),
		Volume:           intNum(summary.Volume),
		FiftyTwoWeekHigh: num(summary.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  num(summary.FiftyTwoWeekLow),
		TrailingPE:       num(summary.TrailingPE),
		DividendYield:    num(summary.DividendYield),
		TotalRevenue:     num(summary.TotalRevenue),
		GrossProfit:      num(summary.GrossProfit),
		OperatingMargin:  num(summary.OperatingMargin),
		ReturnOnEquity:   num(summary.ReturnOnEquity),
		DebtToEquity:     num(summary.DebtToEquity),
		CurrentRatio:     num(summary.CurrentRatio),
	}
	q.ChangePercent = quote.ChangePercent(q.CurrentPrice, q.PreviousClose)

	history := make(quote.History, 0, len(chart.Candles))
	for _, c := range chart.Candles {
		history = append(history, quote.Candle{
			Date:   time.Unix(c.Timestamp, 0).UTC(),
			Open:   *quote.Num(c.Open),
			High:   *quote.Num(c.High),
			Low:    *quote.Num(c.Low),
			Close:  *quote.Num(c.Close),
			Volume: c.Volume,
		})
	}
	return quote.Snapshot{Quote: q, History: history}, nil
}

func displayName(chart yahoo.Chart, summary yahoo.QuoteSummary, symbol string) string {
	for _, n := range []string{summary.LongName, chart.LongName, summary.ShortName, chart.ShortName} {
		if n != "" {
			return n
		}
	}
	return symbol
}

func num(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	return quote.Num(*f)
}

func intNum(f *float64) *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}
