package nse

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockboard/internal/httpx"
	"stockboard/internal/quote"
	"stockboard/internal/source"
)

type Config struct {
	Name    string // display name, default: NSE
	BaseURL string // quote API base, default: https://www.nseindia.com
	// ArchiveURL serves the equity master CSV used as the symbol registry.
	ArchiveURL string
	// SymbolsCacheTTLSec caches the registry; the listing set changes rarely.
	// If <= 0 the registry is fetched on every call.
	SymbolsCacheTTLSec int
}

// Provider fetches live quotes from the NSE equity API. The quote endpoint
// only exposes the current session's OHLCV, so history is a synthetic 30-day
// series repeating that session; see syntheticHistory.
type Provider struct {
	cfg    Config
	client *httpx.Client
	now    func() time.Time

	// registry of listed symbols, keyed by code, value is the company name
	mu             sync.RWMutex
	symbols        map[string]string
	symbolsExpires time.Time
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "NSE"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.nseindia.com"
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = "https://archives.nseindia.com/content/equities/EQUITY_L.csv"
	}
	return &Provider{cfg: cfg, client: hc, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

// StripSuffix removes exchange listing suffixes callers sometimes include.
func StripSuffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suf := range []string{".NS", ".BO"} {
		s = strings.TrimSuffix(s, suf)
	}
	return s
}

func (p *Provider) Fetch(ctx context.Context, symbol string) (quote.Snapshot, error) {
	code := StripSuffix(symbol)

	registry, err := p.registry(ctx)
	if err != nil {
		return quote.Snapshot{}, source.Errf(source.KindNetwork, "%s registry: %v", p.cfg.Name, err)
	}
	companyName, ok := registry[code]
	if !ok {
		return quote.Snapshot{}, source.Errf(source.KindInvalidSymbol, "%s: %q is not a listed equity code", p.cfg.Name, code)
	}

	pq, err := p.fetchQuote(ctx, code)
	if err != nil {
		return quote.Snapshot{}, source.Errf(source.KindNetwork, "%s quote: %v", p.cfg.Name, err)
	}
	if pq.PriceInfo.LastPrice == nil {
		return quote.Snapshot{}, source.Errf(source.KindNoData, "%s: empty quote payload for %s", p.cfg.Name, code)
	}

	last := quote.Num(*pq.PriceInfo.LastPrice)
	var prev *decimal.Decimal
	if pq.PriceInfo.PreviousClose != nil {
		prev = quote.Num(*pq.PriceInfo.PreviousClose)
	}

	open := orElse(pq.PriceInfo.Open, *last)
	high := orElse(pq.PriceInfo.IntraDayHighLow.Max, *last)
	low := orElse(pq.PriceInfo.IntraDayHighLow.Min, *last)
	var volume int64
	if pq.SecurityWiseDP.QuantityTraded != nil {
		volume = *pq.SecurityWiseDP.QuantityTraded
	}

	name := pq.Info.CompanyName
	if name == "" {
		name = companyName
	}

	q := quote.Quote{
		Symbol:        code,
		Name:          name,
		CurrentPrice:  last,
		PreviousClose: prev,
		ChangePercent: quote.ChangePercent(last, prev),
	}
	if volume > 0 {
		q.Volume = &volume
	}
	if pq.PriceInfo.WeekHighLow.Max != nil {
		q.FiftyTwoWeekHigh = quote.Num(*pq.PriceInfo.WeekHighLow.Max)
	}
	if pq.PriceInfo.WeekHighLow.Min != nil {
		q.FiftyTwoWeekLow = quote.Num(*pq.PriceInfo.WeekHighLow.Min)
	}

	history := p.syntheticHistory(open, high, low, *last, volume)
	return quote.Snapshot{Quote: q, History: history}, nil
}

// syntheticHistory repeats the session OHLCV across the trailing 30 calendar
// days ending today, dates ascending. The chart shows a flat line on purpose:
// the quote endpoint carries no depth, and hiding that would misrepresent the
// source. The fallback chain exists for callers that want genuine history.
func (p *Provider) syntheticHistory(open, high, low, last decimal.Decimal, volume int64) quote.History {
	today := p.now().UTC().Truncate(24 * time.Hour)
	const days = 30
	out := make(quote.History, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, quote.Candle{
			Date:   today.AddDate(0, 0, -i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  last,
			Volume: volume,
		})
	}
	return out
}

type providerQuote struct {
	Info struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"companyName"`
	} `json:"info"`
	PriceInfo struct {
		LastPrice       *float64 `json:"lastPrice"`
		Open            *float64 `json:"open"`
		PreviousClose   *float64 `json:"previousClose"`
		IntraDayHighLow struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"intraDayHighLow"`
		WeekHighLow struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"weekHighLow"`
	} `json:"priceInfo"`
	SecurityWiseDP struct {
		QuantityTraded *int64 `json:"quantityTraded"`
	} `json:"securityWiseDP"`
}

func (p *Provider) fetchQuote(ctx context.Context, code string) (providerQuote, error) {
	u := fmt.Sprintf("%s/api/quote-equity?symbol=%s", p.cfg.BaseURL, url.QueryEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return providerQuote{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", p.cfg.BaseURL)

	res, err := p.client.Do(ctx, req)
	if err != nil {
		return providerQuote{}, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return providerQuote{}, fmt.Errorf("GET %s -> %d: %s", u, res.StatusCode, string(b))
	}

	var pq providerQuote
	if err := json.NewDecoder(res.Body).Decode(&pq); err != nil {
		return providerQuote{}, fmt.Errorf("decode: %w", err)
	}
	return pq, nil
}

// registry returns the listed-equity code set, fetching the archive CSV and
// caching it for the configured TTL.
func (p *Provider) registry(ctx context.Context) (map[string]string, error) {
	ttl := time.Duration(p.cfg.SymbolsCacheTTLSec) * time.Second
	if ttl > 0 {
		p.mu.RLock()
		if p.symbols != nil && p.now().Before(p.symbolsExpires) {
			reg := p.symbols
			p.mu.RUnlock()
			return reg, nil
		}
		p.mu.RUnlock()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.ArchiveURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	res, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s -> %d", p.cfg.ArchiveURL, res.StatusCode)
	}

	reg, err := parseEquityList(res.Body)
	if err != nil {
		return nil, err
	}

	if ttl > 0 {
		p.mu.Lock()
		p.symbols = reg
		p.symbolsExpires = p.now().Add(ttl)
		p.mu.Unlock()
	}
	return reg, nil
}

// parseEquityList reads the equity master CSV (SYMBOL, NAME OF COMPANY, ...)
// into a code -> company name map. The header row is skipped.
func parseEquityList(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := make(map[string]string, 2048)
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse equity list: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		name := ""
		if len(rec) > 1 {
			name = strings.TrimSpace(rec[1])
		}
		out[code] = name
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("equity list is empty")
	}
	return out, nil
}

func orElse(v *float64, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *quote.Num(*v)
}
