package ports

import (
	"context"
	"time"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// Storage persists merged trade histories and valuation snapshots between
// refresh cycles.
type Storage interface {
	// GetTrades returns the cached trade history for a wallet, newest first.
	GetTrades(ctx context.Context, wallet string) ([]domain.Trade, error)

	// SaveTrades replaces the cached history for a wallet.
	SaveTrades(ctx context.Context, wallet string, trades []domain.Trade) error

	// SaveSnapshot records the result of one refresh cycle.
	SaveSnapshot(ctx context.Context, wallet string, snap domain.Snapshot, at time.Time) error

	// GetDailyPnl returns the realized-daily-P&L series for a wallet,
	// ascending by date.
	GetDailyPnl(ctx context.Context, wallet string) ([]domain.DailyPnl, error)

	// UpsertDailyPnl writes one day's realized P&L row.
	UpsertDailyPnl(ctx context.Context, wallet string, row domain.DailyPnl) error

	// Close shuts the store down cleanly.
	Close() error
}
