package domain

import (
	"sort"
	"strings"
	"time"
)

// position.go — fill-to-position reducer.
//
// Weighted-average-cost convention: buys move the average entry price, sells
// realize P&L against it and leave the cost basis of the remaining shares
// untouched.

// closedEpsilon is the size below which a position counts as closed.
const closedEpsilon = 1e-9

// oversoldEpsilon matches the threshold the stats pipeline uses to flag
// over-sold positions.
const oversoldEpsilon = 1e-4

// PositionKey identifies a position within one wallet.
type PositionKey struct {
	MarketKey string
	Outcome   string // lowercased
}

// PositionState classifies a position for reporting.
type PositionState string

const (
	PositionOpen     PositionState = "Open"
	PositionClosed   PositionState = "Closed"
	PositionOverSold PositionState = "OverSold"
)

// Position is the running accounting state for one (marketKey, outcome).
// Positions are never deleted: a position at size≈0 is a completed record.
type Position struct {
	Market      string // display title from the most recent trade
	MarketKey   string
	Outcome     string
	Size        float64 // shares currently held, signed
	AvgCost     float64 // weighted-average entry price of held shares
	RealizedPnl float64
	BuyNotional float64 // Σ buyPrice×buyQty, invested-capital denominator
	Trades      int
	Status      MarketStatus
	FirstTrade  time.Time
	LastTrade   time.Time
}

// Closed reports whether the position has been fully exited.
func (p *Position) Closed() bool {
	return p.Size > -closedEpsilon && p.Size < closedEpsilon
}

// State classifies the position. Assumption carried from the upstream
// pipeline: a sell larger than the held size is not rejected, it produces a
// negative (over-sold) position and accounting continues.
func (p *Position) State() PositionState {
	switch {
	case p.Size < -oversoldEpsilon:
		return PositionOverSold
	case p.Closed():
		return PositionClosed
	default:
		return PositionOpen
	}
}

// ReducePositions folds a trade history into per-(marketKey, outcome)
// positions. The input is re-sorted ascending by timestamp internally
// (stable, so equal timestamps keep arrival order); callers do not need to
// pre-sort. Trades without a market key are skipped.
func ReducePositions(trades []Trade) map[PositionKey]*Position {
	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	positions := make(map[PositionKey]*Position)
	for _, t := range ordered {
		if !t.AccountingEligible() {
			continue
		}

		key := PositionKey{
			MarketKey: t.MarketKey,
			Outcome:   strings.ToLower(strings.TrimSpace(t.Outcome)),
		}
		pos, ok := positions[key]
		if !ok {
			pos = &Position{
				MarketKey:  t.MarketKey,
				Outcome:    t.Outcome,
				FirstTrade: t.Timestamp,
			}
			positions[key] = pos
		}

		switch t.Side {
		case SideSell:
			pos.RealizedPnl += (t.Price - pos.AvgCost) * t.Size
			pos.Size -= t.Size
			// AvgCost unchanged: sells never alter the basis of what remains.
		default:
			newSize := pos.Size + t.Size
			if newSize > 0 {
				pos.AvgCost = (pos.AvgCost*pos.Size + t.Price*t.Size) / newSize
			} else {
				pos.AvgCost = 0
			}
			pos.Size = newSize
			pos.BuyNotional += t.Price * t.Size
		}

		pos.Trades++
		pos.LastTrade = t.Timestamp
		if t.Market != "" {
			pos.Market = t.Market
		}
		if t.Status != "" {
			pos.Status = t.Status
		}
	}
	return positions
}
