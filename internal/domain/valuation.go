package domain

import "sort"

// valuation.go — mark-to-market snapshot over reduced positions.

// PricePoint is the live mark for one market, keyed by market key.
type PricePoint struct {
	Price    float64
	Closed   bool
	Resolved bool
}

// PriceBook is the live-price map the valuator reads. It may be partially
// populated at any time; updates are last-write-wins per key so replaying a
// batch of updates in any serialized order converges to the same book.
type PriceBook struct {
	marks map[string]PricePoint
}

// NewPriceBook returns an empty book.
func NewPriceBook() *PriceBook {
	return &PriceBook{marks: make(map[string]PricePoint)}
}

// Apply records the latest mark for a market key. Last write wins.
func (b *PriceBook) Apply(marketKey string, p PricePoint) {
	if marketKey == "" {
		return
	}
	b.marks[marketKey] = p
}

// Price returns the live mark for a market key, if one is known.
func (b *PriceBook) Price(marketKey string) (float64, bool) {
	p, ok := b.marks[marketKey]
	if !ok {
		return 0, false
	}
	return p.Price, true
}

// Len returns the number of marked markets.
func (b *PriceBook) Len() int { return len(b.marks) }

// PriceLookup resolves a market key to a live price. A false return means the
// market is unscorable: no unrealized P&L and excluded from the win rate.
type PriceLookup func(marketKey string) (float64, bool)

// Snapshot is the wallet-level valuation produced by Valuate.
type Snapshot struct {
	TotalPnl      float64
	RealizedPnl   float64
	UnrealizedPnl float64
	Volume        float64  // Σ buy notional, invested capital
	ROI           float64  // percent, 0 when volume is 0
	WinRate       *float64 // percent; nil when no position is scorable
	Won           int
	Lost          int
	OpenPositions int
}

// Valuate combines reduced positions with live prices.
//
// Classification: a closed position is a win iff realized > 0. An open
// position with a live price is a win iff its unrealized P&L > 0. Open
// positions without a price contribute zero unrealized and are excluded from
// the win rate entirely — nil WinRate is distinct from 0%.
//
// Positions are summed in sorted-key order. Map iteration order varies run to
// run and float summation is not associative, so summing in map order would
// flip the result's low bits between reruns on identical input.
func Valuate(positions map[PositionKey]*Position, lookup PriceLookup) Snapshot {
	keys := make([]PositionKey, 0, len(positions))
	for k := range positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].MarketKey != keys[j].MarketKey {
			return keys[i].MarketKey < keys[j].MarketKey
		}
		return keys[i].Outcome < keys[j].Outcome
	})

	var snap Snapshot

	for _, k := range keys {
		pos := positions[k]
		snap.RealizedPnl += pos.RealizedPnl
		snap.Volume += pos.BuyNotional

		if pos.Closed() {
			if pos.RealizedPnl > 0 {
				snap.Won++
			} else {
				snap.Lost++
			}
			continue
		}

		snap.OpenPositions++
		cp, ok := lookup(pos.MarketKey)
		if !ok {
			continue // unscorable
		}
		unrealized := (cp - pos.AvgCost) * pos.Size
		snap.UnrealizedPnl += unrealized
		if unrealized > 0 {
			snap.Won++
		} else {
			snap.Lost++
		}
	}

	snap.TotalPnl = snap.RealizedPnl + snap.UnrealizedPnl
	if snap.Volume > 0 {
		snap.ROI = snap.TotalPnl / snap.Volume * 100
	}
	if scorable := snap.Won + snap.Lost; scorable > 0 {
		wr := 100 * float64(snap.Won) / float64(scorable)
		snap.WinRate = &wr
	}
	return snap
}

// PickEffective implements the authoritative-over-computed precedence rule:
// an external leaderboard figure beats the locally computed one, which beats
// the fallback.
func PickEffective(authoritative, computed *float64, fallback float64) float64 {
	if authoritative != nil {
		return *authoritative
	}
	if computed != nil {
		return *computed
	}
	return fallback
}
