package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockboard/internal/quote"
	"stockboard/internal/source"
)

// entry stores a cached snapshot for a single symbol with expiry.
type entry struct {
	expiresAt time.Time
	snap      quote.Snapshot
}

// Source memoizes fetch results per symbol for a TTL so repeated identical
// requests within the window do not hammer the upstream provider. Concurrent
// requests for the same symbol are collapsed into one upstream call.
// Failures are never cached.
type Source struct {
	S        source.Source
	TTL      time.Duration
	MaxItems int

	group singleflight.Group
	mu    sync.RWMutex
	items map[string]entry // key: symbol
}

func (c *Source) Name() string { return c.S.Name() }

func (c *Source) Fetch(ctx context.Context, symbol string) (quote.Snapshot, error) {
	if c.TTL <= 0 {
		return c.S.Fetch(ctx, symbol)
	}

	c.mu.RLock()
	e, ok := c.items[symbol]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.snap, nil
	}

	v, err, _ := c.group.Do(symbol, func() (any, error) {
		snap, err := c.S.Fetch(ctx, symbol)
		if err != nil {
			return nil, err
		}
		c.store(symbol, snap)
		return snap, nil
	})
	if err != nil {
		return quote.Snapshot{}, err
	}
	return v.(quote.Snapshot), nil
}

func (c *Source) store(symbol string, snap quote.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[symbol] = entry{expiresAt: time.Now().Add(c.TTL), snap: snap}

	// best-effort cap: drop expired entries first, then arbitrary ones
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		now := time.Now()
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
			if len(c.items) <= c.MaxItems {
				break
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			delete(c.items, k)
		}
	}
}
