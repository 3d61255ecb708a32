package nse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockboard/internal/httpx"
	"stockboard/internal/source"
)

const equityList = `SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING, PAID UP VALUE, MARKET LOT, ISIN NUMBER, FACE VALUE
RELIANCE,Reliance Industries Limited,EQ,29-NOV-1995,10,1,INE002A01018,10
TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1
`

const relianceQuote = `{
  "info": {"symbol": "RELIANCE", "companyName": "Reliance Industries Limited"},
  "priceInfo": {
    "lastPrice": 102,
    "open": 100,
    "previousClose": 98,
    "intraDayHighLow": {"min": 98, "max": 105},
    "weekHighLow": {"min": 85.5, "max": 120.25}
  },
  "securityWiseDP": {"quantityTraded": 5000}
}`

func newTestProvider(t *testing.T, quoteBody string, quoteStatus int) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/equities/EQUITY_L.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(equityList))
	})
	mux.HandleFunc("/api/quote-equity", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(quoteStatus)
		_, _ = w.Write([]byte(quoteBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:            srv.URL,
		ArchiveURL:         srv.URL + "/equities/EQUITY_L.csv",
		SymbolsCacheTTLSec: 60,
	}, httpx.New(5*time.Second))
}

func TestFetch_NormalizesQuote(t *testing.T) {
	p := newTestProvider(t, relianceQuote, http.StatusOK)
	snap, err := p.Fetch(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	q := snap.Quote
	if q.Symbol != "RELIANCE" || q.Name != "Reliance Industries Limited" {
		t.Fatalf("unexpected identity: %+v", q)
	}
	if q.CurrentPrice == nil || q.CurrentPrice.StringFixed(2) != "102.00" {
		t.Fatalf("current price: %v", q.CurrentPrice)
	}
	if q.ChangePercent == nil {
		t.Fatal("change percent missing")
	}
	// (102-98)/98*100
	if got := q.ChangePercent.StringFixed(2); got != "4.08" {
		t.Fatalf("change percent = %s", got)
	}
	if q.FiftyTwoWeekHigh == nil || q.FiftyTwoWeekHigh.StringFixed(2) != "120.25" {
		t.Fatalf("52w high: %v", q.FiftyTwoWeekHigh)
	}
	if q.Volume == nil || *q.Volume != 5000 {
		t.Fatalf("volume: %v", q.Volume)
	}
}

func TestFetch_SyntheticHistoryRepeatsSession(t *testing.T) {
	p := newTestProvider(t, `{
	  "priceInfo": {
	    "lastPrice": 102,
	    "open": 100,
	    "previousClose": 98,
	    "intraDayHighLow": {"min": 98, "max": 105}
	  },
	  "securityWiseDP": {"quantityTraded": 5000}
	}`, http.StatusOK)
	today := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return today }

	snap, err := p.Fetch(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.History) != 30 {
		t.Fatalf("want 30 rows, got %d", len(snap.History))
	}
	for i, c := range snap.History {
		if c.Open.StringFixed(2) != "100.00" || c.High.StringFixed(2) != "105.00" ||
			c.Low.StringFixed(2) != "98.00" || c.Close.StringFixed(2) != "102.00" || c.Volume != 5000 {
			t.Fatalf("row %d not the repeated session tuple: %+v", i, c)
		}
		if i > 0 && !snap.History[i-1].Date.Before(c.Date) {
			t.Fatalf("dates not strictly ascending at %d", i)
		}
	}
	if !snap.History[29].Date.Equal(today) {
		t.Fatalf("series should end today, got %s", snap.History[29].Date)
	}
}

func TestFetch_UnknownCodeIsInvalidSymbol(t *testing.T) {
	p := newTestProvider(t, relianceQuote, http.StatusOK)
	_, err := p.Fetch(context.Background(), "NOTLISTED")
	if source.KindOf(err) != source.KindInvalidSymbol {
		t.Fatalf("want invalid symbol, got %v", err)
	}
}

func TestFetch_EmptyPayloadIsNoData(t *testing.T) {
	p := newTestProvider(t, `{}`, http.StatusOK)
	_, err := p.Fetch(context.Background(), "TCS")
	if source.KindOf(err) != source.KindNoData {
		t.Fatalf("want no data, got %v", err)
	}
}

func TestFetch_UpstreamFailureIsNetworkError(t *testing.T) {
	p := newTestProvider(t, `{"error":"throttled"}`, http.StatusUnauthorized)
	_, err := p.Fetch(context.Background(), "TCS")
	if source.KindOf(err) != source.KindNetwork {
		t.Fatalf("want network error, got %v", err)
	}
	var se *source.Error
	if !errors.As(err, &se) {
		t.Fatalf("want typed source error, got %T", err)
	}
}

func TestFetch_ZeroPreviousCloseLeavesChangeAbsent(t *testing.T) {
	p := newTestProvider(t, `{
	  "priceInfo": {"lastPrice": 102, "previousClose": 0}
	}`, http.StatusOK)
	snap, err := p.Fetch(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if snap.Quote.ChangePercent != nil {
		t.Fatalf("change percent must stay absent on zero previous close, got %s", snap.Quote.ChangePercent)
	}
}

func TestStripSuffix(t *testing.T) {
	for in, want := range map[string]string{
		"RELIANCE.NS": "RELIANCE",
		"reliance.bo": "RELIANCE",
		" TCS ":       "TCS",
		"INFY":        "INFY",
	} {
		if got := StripSuffix(in); got != want {
			t.Fatalf("StripSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}
