package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// Console implements ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a notifier that writes to stdout. table=false prints a
// compact one-liner per refresh instead of the full tables.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyWallet prints one wallet's positions and valuation.
func (c *Console) NotifyWallet(_ context.Context, wallet string, positions map[domain.PositionKey]*domain.Position, snap domain.Snapshot) error {
	if c.table {
		c.printPositions(wallet, positions, snap)
	} else {
		c.printCompact(wallet, snap)
	}
	return nil
}

// printCompact prints the essentials on one line.
func (c *Console) printCompact(wallet string, snap domain.Snapshot) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] %s pnl:$%.2f (r:$%.2f u:$%.2f) vol:$%.2f roi:%.1f%% wr:%s open:%d\n",
		now, shorten(wallet, 10), snap.TotalPnl, snap.RealizedPnl, snap.UnrealizedPnl,
		snap.Volume, snap.ROI, winRateLabel(snap.WinRate), snap.OpenPositions)
}

// printPositions prints the full position table plus the snapshot summary.
func (c *Console) printPositions(wallet string, positions map[domain.PositionKey]*domain.Position, snap domain.Snapshot) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %s — %d positions\n", now, shorten(wallet, 10), len(positions))

	ordered := make([]*domain.Position, 0, len(positions))
	for _, p := range positions {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LastTrade.After(ordered[j].LastTrade)
	})

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Outcome", "State", "Size", "AvgCost", "Realized", "Invested", "Trades")

	for _, p := range ordered {
		table.Append(
			shorten(p.Market, 36),
			p.Outcome,
			string(p.State()),
			fmt.Sprintf("%.2f", p.Size),
			fmt.Sprintf("%.3f", p.AvgCost),
			fmt.Sprintf("$%.2f", p.RealizedPnl),
			fmt.Sprintf("$%.2f", p.BuyNotional),
			fmt.Sprintf("%d", p.Trades),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  total:$%.2f realized:$%.2f unrealized:$%.2f volume:$%.2f roi:%.1f%% winrate:%s\n\n",
		snap.TotalPnl, snap.RealizedPnl, snap.UnrealizedPnl, snap.Volume, snap.ROI,
		winRateLabel(snap.WinRate))
}

// NotifyFleet prints the strategy table and the summed totals row.
func (c *Console) NotifyFleet(_ context.Context, strategies []domain.StrategySummary, totals domain.FleetTotals) error {
	fmt.Fprintf(c.out, "\n=== STRATEGY FLEET (%d visible) ===\n", totals.Strategies)

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Kind", "Active", "Balance", "PnL", "Return", "Trades", "Open", "W/L", "WinRate")

	for _, s := range strategies {
		table.Append(
			shorten(s.Name, 24),
			kindLabel(s.Kind),
			activeLabel(s.Active),
			fmt.Sprintf("$%.2f", s.Balance),
			fmt.Sprintf("$%.2f", s.TotalPnl),
			fmt.Sprintf("%.1f%%", s.ReturnPct()),
			fmt.Sprintf("%d", s.TotalTrades),
			fmt.Sprintf("%d", s.OpenPositions),
			fmt.Sprintf("%d/%d", s.Won, s.Lost),
			winRateLabel(s.WinRate()),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  TOTAL balance:$%.2f pnl:$%.2f (r:$%.2f u:$%.2f) trades:%d open:%d winrate:%s\n\n",
		totals.Balance, totals.TotalPnl, totals.RealizedPnl, totals.UnrealizedPnl,
		totals.TotalTrades, totals.OpenPositions, winRateLabel(totals.WinRate))
	return nil
}

// winRateLabel distinguishes "nothing scorable" from an actual 0%.
func winRateLabel(wr *float64) string {
	if wr == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *wr)
}

func kindLabel(k domain.StrategyKind) string {
	if k == domain.KindLiveTest {
		return "LT"
	}
	return "FT"
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "paused"
}

func shorten(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
