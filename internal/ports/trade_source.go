package ports

import (
	"context"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// TradeSource fetches the normalized trade history of a wallet from one
// upstream feed (internal ledger, blockchain indexer, or the capped stale
// fallback). Implementations own all I/O and normalization; the accounting
// core only ever sees the canonical shape.
type TradeSource interface {
	FetchTrades(ctx context.Context, wallet string) ([]domain.Trade, error)
}
