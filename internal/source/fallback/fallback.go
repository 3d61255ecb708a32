package fallback

import (
	"context"
	"fmt"

	"stockboard/internal/quote"
	"stockboard/internal/source"
)

// Source tries a primary source and, on any failure, a fallback. The policy
// choice is made once per market when the resolver is composed, not per
// request: the primary trades history depth for quote freshness, the fallback
// the other way around.
type Source struct {
	Primary  source.Source
	Fallback source.Source
}

func New(primary, fallback source.Source) *Source {
	return &Source{Primary: primary, Fallback: fallback}
}

func (s *Source) Name() string {
	return fmt.Sprintf("%s+%s", s.Primary.Name(), s.Fallback.Name())
}

// Fetch returns the primary result when available. When both sources fail the
// error carries both causes; surfacing only the last one would hide why the
// preferred source was skipped.
func (s *Source) Fetch(ctx context.Context, symbol string) (quote.Snapshot, error) {
	snap, primaryErr := s.Primary.Fetch(ctx, symbol)
	if primaryErr == nil {
		return snap, nil
	}
	snap, fallbackErr := s.Fallback.Fetch(ctx, symbol)
	if fallbackErr == nil {
		return snap, nil
	}
	return quote.Snapshot{}, source.Composite(primaryErr, fallbackErr)
}
