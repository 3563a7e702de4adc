package domain

import (
	"sort"
	"strings"
	"time"
)

// fleet.go — aggregation across the strategy-wallet fleet. Forward-test
// wallets trade on paper; live-test wallets mirror real trades with real
// funds. Both produce the same summary row.

// StrategyKind separates the two wallet categories.
type StrategyKind string

const (
	KindForwardTest StrategyKind = "forward_test"
	KindLiveTest    StrategyKind = "live_test"
)

// StrategySummary is one row of the fleet table.
type StrategySummary struct {
	ID              string
	Name            string
	Kind            StrategyKind
	Wallet          string
	Balance         float64
	StartingBalance float64
	CashAvailable   float64
	TotalPnl        float64
	RealizedPnl     float64
	UnrealizedPnl   float64
	TotalTrades     int
	OpenPositions   int
	Won             int
	Lost            int
	StartDate       time.Time
	Active          bool
}

// ReturnPct is total P&L over starting balance, 0 when there is no starting
// balance to divide by.
func (s StrategySummary) ReturnPct() float64 {
	if s.StartingBalance <= 0 {
		return 0
	}
	return s.TotalPnl / s.StartingBalance * 100
}

// WinRate is the per-strategy win percentage, nil when no trade has resolved.
func (s StrategySummary) WinRate() *float64 {
	resolved := s.Won + s.Lost
	if resolved == 0 {
		return nil
	}
	wr := 100 * float64(s.Won) / float64(resolved)
	return &wr
}

// FleetFilter restricts which strategies feed the totals. Zero value means
// everything.
type FleetFilter struct {
	Kind       StrategyKind // "" = both categories
	ActiveOnly bool
}

// FilterStrategies returns the strategies matching the filter, preserving
// input order. Totals are always computed over the filtered set.
func FilterStrategies(list []StrategySummary, f FleetFilter) []StrategySummary {
	out := make([]StrategySummary, 0, len(list))
	for _, s := range list {
		if f.Kind != "" && s.Kind != f.Kind {
			continue
		}
		if f.ActiveOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FleetTotals is the element-wise sum over the visible strategies.
type FleetTotals struct {
	Strategies    int
	Balance       float64
	CashAvailable float64
	TotalPnl      float64
	RealizedPnl   float64
	UnrealizedPnl float64
	TotalTrades   int
	OpenPositions int
	Won           int
	Lost          int
	WinRate       *float64 // recomputed from summed counts, nil if none resolved
}

// TotalFleet sums the fleet. The win rate is recomputed from Σwon and Σlost
// rather than averaged per strategy — averaging percentages would weight a
// 1-trade wallet the same as a 300-trade wallet.
func TotalFleet(list []StrategySummary) FleetTotals {
	var t FleetTotals
	t.Strategies = len(list)
	for _, s := range list {
		t.Balance += s.Balance
		t.CashAvailable += s.CashAvailable
		t.TotalPnl += s.TotalPnl
		t.RealizedPnl += s.RealizedPnl
		t.UnrealizedPnl += s.UnrealizedPnl
		t.TotalTrades += s.TotalTrades
		t.OpenPositions += s.OpenPositions
		t.Won += s.Won
		t.Lost += s.Lost
	}
	if resolved := t.Won + t.Lost; resolved > 0 {
		wr := 100 * float64(t.Won) / float64(resolved)
		t.WinRate = &wr
	}
	return t
}

// Sortable fields for SortStrategies.
const (
	SortByName      = "name"
	SortByBalance   = "balance"
	SortByTotalPnl  = "total_pnl"
	SortByReturnPct = "return_pct"
	SortByWinRate   = "win_rate"
	SortByTrades    = "total_trades"
	SortByOpen      = "open_positions"
	SortByStartDate = "start_date"
)

// SortStrategies orders the list by the named field, stable. Strategies with
// no value for the field (a nil win rate) always sort last, in either
// direction, so missing data never interleaves with real values.
func SortStrategies(list []StrategySummary, field string, descending bool) {
	numeric := func(s StrategySummary) (float64, bool) {
		switch field {
		case SortByBalance:
			return s.Balance, true
		case SortByTotalPnl:
			return s.TotalPnl, true
		case SortByReturnPct:
			return s.ReturnPct(), true
		case SortByWinRate:
			if wr := s.WinRate(); wr != nil {
				return *wr, true
			}
			return 0, false
		case SortByTrades:
			return float64(s.TotalTrades), true
		case SortByOpen:
			return float64(s.OpenPositions), true
		case SortByStartDate:
			return float64(s.StartDate.UnixMilli()), true
		default:
			return 0, false
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if field == SortByName {
			a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
			if descending {
				return a > b
			}
			return a < b
		}

		a, aOK := numeric(list[i])
		b, bOK := numeric(list[j])
		if aOK != bOK {
			return aOK // missing values last
		}
		if !aOK {
			return false
		}
		if descending {
			return a > b
		}
		return a < b
	})
}
