package resolver

import (
	"context"
	"strings"

	"stockboard/internal/quote"
	"stockboard/internal/source"
)

// Resolver dispatches a symbol+market request to the source registered for
// that market and stamps the market onto the result. It does not retry:
// re-submitting belongs to the caller, keeping this layer a pure dispatch.
type Resolver struct {
	sources map[quote.Market]source.Source
}

// New builds a resolver from one source per market. A nil source leaves the
// market unregistered and requests for it fail with an invalid-symbol error.
func New(us, nse, bse source.Source) *Resolver {
	sources := make(map[quote.Market]source.Source, 3)
	if us != nil {
		sources[quote.US] = us
	}
	if nse != nil {
		sources[quote.NSE] = nse
	}
	if bse != nil {
		sources[quote.BSE] = bse
	}
	return &Resolver{sources: sources}
}

// Normalize cleans raw user input: uppercase, trimmed, known exchange
// suffixes stripped. Callers are never assumed to have pre-cleaned symbols.
func Normalize(symbolInput string) string {
	s := strings.ToUpper(strings.TrimSpace(symbolInput))
	for _, suf := range []string{".NS", ".BO"} {
		s = strings.TrimSuffix(s, suf)
	}
	return s
}

// Resolve fetches a snapshot for the symbol on the selected market. Adapter
// failures pass through as typed source errors; nothing provider-specific
// crosses this boundary.
func (r *Resolver) Resolve(ctx context.Context, symbolInput string, market quote.Market) (quote.Snapshot, error) {
	symbol := Normalize(symbolInput)
	if symbol == "" {
		return quote.Snapshot{}, source.Errf(source.KindInvalidSymbol, "empty symbol")
	}
	src, ok := r.sources[market]
	if !ok {
		return quote.Snapshot{}, source.Errf(source.KindInvalidSymbol, "no source registered for market %q", market)
	}
	snap, err := src.Fetch(ctx, symbol)
	if err != nil {
		return quote.Snapshot{}, err
	}
	// The market on the quote is set here, once, and is the only place the
	// currency decision can originate from.
	snap.Quote.Market = market
	if snap.Quote.Symbol == "" {
		snap.Quote.Symbol = symbol
	}
	return snap, nil
}
