package source

import (
	"context"

	"stockboard/internal/quote"
)

// Source fetches a normalized snapshot for a single symbol. Implementations
// convert their provider's response shape at this boundary; no raw provider
// payloads or errors cross it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (quote.Snapshot, error)
}
