package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stockboard/internal/quote"
	"stockboard/internal/source"
)

type countingSource struct {
	calls atomic.Int64
	err   error
	delay time.Duration
}

func (c *countingSource) Name() string { return "counting" }
func (c *countingSource) Fetch(_ context.Context, symbol string) (quote.Snapshot, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return quote.Snapshot{}, c.err
	}
	return quote.Snapshot{Quote: quote.Quote{Symbol: symbol}}, nil
}

func TestFetch_MemoizesWithinTTL(t *testing.T) {
	upstream := &countingSource{}
	c := &Source{S: upstream, TTL: time.Minute}

	for i := 0; i < 5; i++ {
		snap, err := c.Fetch(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if snap.Quote.Symbol != "AAPL" {
			t.Fatalf("unexpected snapshot: %+v", snap.Quote)
		}
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Fatalf("want 1 upstream call, got %d", got)
	}
}

func TestFetch_DistinctSymbolsAreDistinctEntries(t *testing.T) {
	upstream := &countingSource{}
	c := &Source{S: upstream, TTL: time.Minute}

	_, _ = c.Fetch(context.Background(), "AAPL")
	_, _ = c.Fetch(context.Background(), "MSFT")
	if got := upstream.calls.Load(); got != 2 {
		t.Fatalf("want 2 upstream calls, got %d", got)
	}
}

func TestFetch_FailuresAreNotCached(t *testing.T) {
	upstream := &countingSource{err: source.Errf(source.KindNetwork, "down")}
	c := &Source{S: upstream, TTL: time.Minute}

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), "AAPL"); err == nil {
			t.Fatal("want error")
		}
	}
	if got := upstream.calls.Load(); got != 3 {
		t.Fatalf("failures must hit upstream every time, got %d calls", got)
	}
}

func TestFetch_ZeroTTLBypassesCache(t *testing.T) {
	upstream := &countingSource{}
	c := &Source{S: upstream}

	_, _ = c.Fetch(context.Background(), "AAPL")
	_, _ = c.Fetch(context.Background(), "AAPL")
	if got := upstream.calls.Load(); got != 2 {
		t.Fatalf("want 2 upstream calls with no TTL, got %d", got)
	}
}

func TestFetch_ConcurrentRequestsCollapse(t *testing.T) {
	upstream := &countingSource{delay: 50 * time.Millisecond}
	c := &Source{S: upstream, TTL: time.Minute}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Fetch(context.Background(), "AAPL")
		}()
	}
	wg.Wait()
	if got := upstream.calls.Load(); got != 1 {
		t.Fatalf("concurrent identical fetches should share one upstream call, got %d", got)
	}
}
