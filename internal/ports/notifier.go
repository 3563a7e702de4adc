package ports

import (
	"context"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// Notifier presents refresh results to the user. The console implementation
// prints formatted tables.
type Notifier interface {
	// NotifyWallet shows one wallet's positions and valuation snapshot.
	NotifyWallet(ctx context.Context, wallet string, positions map[domain.PositionKey]*domain.Position, snap domain.Snapshot) error

	// NotifyFleet shows the strategy table and its totals.
	NotifyFleet(ctx context.Context, strategies []domain.StrategySummary, totals domain.FleetTotals) error
}
