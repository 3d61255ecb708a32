package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stockboard/internal/metrics"
	"stockboard/internal/quote"
	"stockboard/internal/resolver"
	"stockboard/internal/source"
)

type quoteHandler struct {
	resolver *resolver.Resolver
	timeout  time.Duration
}

// quoteResponse is everything one dashboard render needs: the normalized
// quote, the chartable history and both projected metric collections.
type quoteResponse struct {
	Quote      quote.Quote   `json:"quote"`
	History    quote.History `json:"history"`
	Headline   []metrics.Row `json:"headline"`
	Financials []metrics.Row `json:"financials"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *quoteHandler) getQuote(w http.ResponseWriter, r *http.Request) {
	symbol, market, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.resolver.Resolve(ctx, symbol, market)
	if err != nil {
		writeFetchError(w, symbol, market, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(quoteResponse{
		Quote:      snap.Quote,
		History:    snap.History,
		Headline:   metrics.Headline(snap.Quote),
		Financials: metrics.Financials(snap.Quote),
	})
}

func (h *quoteHandler) exportFinancials(w http.ResponseWriter, r *http.Request) {
	symbol, market, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.resolver.Resolve(ctx, symbol, market)
	if err != nil {
		writeFetchError(w, symbol, market, err)
		return
	}

	filename := fmt.Sprintf("%s_financial_data.csv", snap.Quote.Symbol)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_ = metrics.WriteFinancialsCSV(w, snap.Quote)
}

func (h *quoteHandler) parseRequest(w http.ResponseWriter, r *http.Request) (string, quote.Market, bool) {
	symbol := r.URL.Query().Get("symbol")
	if resolver.Normalize(symbol) == "" {
		writeJSONError(w, http.StatusBadRequest, "missing symbol query param", source.KindInvalidSymbol)
		return "", "", false
	}
	market, err := quote.ParseMarket(r.URL.Query().Get("market"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), source.KindInvalidSymbol)
		return "", "", false
	}
	return symbol, market, true
}

// writeFetchError maps the adapter error taxonomy onto HTTP statuses. The
// message names the symbol and market, the only user-visible error behavior.
func writeFetchError(w http.ResponseWriter, symbol string, market quote.Market, err error) {
	kind := source.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case source.KindInvalidSymbol:
		status = http.StatusBadRequest
	case source.KindNoData:
		status = http.StatusNotFound
	}
	msg := fmt.Sprintf("error fetching data for %s on %s: %v", resolver.Normalize(symbol), market, err)
	writeJSONError(w, status, msg, kind)
}

func writeJSONError(w http.ResponseWriter, status int, msg string, kind source.ErrorKind) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Kind: string(kind)})
}
