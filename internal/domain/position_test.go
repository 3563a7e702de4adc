package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqTrades(key string, specs ...struct {
	side  Side
	price float64
	size  float64
}) []Trade {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	trades := make([]Trade, 0, len(specs))
	for i, s := range specs {
		trades = append(trades, Trade{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			MarketKey: key,
			Outcome:   "Yes",
			Side:      s.side,
			Price:     s.price,
			Size:      s.size,
		})
	}
	return trades
}

type fill = struct {
	side  Side
	price float64
	size  float64
}

func TestReducePositions_BuysOnly_WeightedMean(t *testing.T) {
	trades := seqTrades("0xabc",
		fill{SideBuy, 0.40, 10},
		fill{SideBuy, 0.60, 10},
	)

	positions := ReducePositions(trades)
	pos := positions[PositionKey{MarketKey: "0xabc", Outcome: "yes"}]
	require.NotNil(t, pos)

	assert.InDelta(t, 20.0, pos.Size, 1e-12)
	assert.InDelta(t, 0.50, pos.AvgCost, 1e-12)
	assert.InDelta(t, 10.0, pos.BuyNotional, 1e-12)
	assert.Equal(t, 0.0, pos.RealizedPnl)
}

// The worked example: BUY 10@0.40, BUY 10@0.60, SELL 15@0.70.
func TestReducePositions_ReferenceScenario(t *testing.T) {
	trades := seqTrades("0xabc",
		fill{SideBuy, 0.40, 10},
		fill{SideBuy, 0.60, 10},
		fill{SideSell, 0.70, 15},
	)

	pos := ReducePositions(trades)[PositionKey{MarketKey: "0xabc", Outcome: "yes"}]
	require.NotNil(t, pos)

	assert.InDelta(t, 5.0, pos.Size, 1e-12)
	assert.InDelta(t, 0.50, pos.AvgCost, 1e-12, "sells must not move the basis")
	assert.InDelta(t, 3.00, pos.RealizedPnl, 1e-12)
	assert.InDelta(t, 10.0, pos.BuyNotional, 1e-12)
	assert.Equal(t, PositionOpen, pos.State())
}

func TestReducePositions_RealizedSign(t *testing.T) {
	above := ReducePositions(seqTrades("0xa",
		fill{SideBuy, 0.50, 10},
		fill{SideSell, 0.70, 10},
	))[PositionKey{MarketKey: "0xa", Outcome: "yes"}]
	assert.Greater(t, above.RealizedPnl, 0.0)
	assert.True(t, above.Closed())

	below := ReducePositions(seqTrades("0xb",
		fill{SideBuy, 0.50, 10},
		fill{SideSell, 0.30, 10},
	))[PositionKey{MarketKey: "0xb", Outcome: "yes"}]
	assert.Less(t, below.RealizedPnl, 0.0)
}

// Oversell is deliberately permissive: the position goes negative and keeps
// accruing. Pinned so any future clamping is an intentional change.
func TestReducePositions_OversellGoesNegative(t *testing.T) {
	pos := ReducePositions(seqTrades("0xabc",
		fill{SideBuy, 0.50, 10},
		fill{SideSell, 0.60, 15},
	))[PositionKey{MarketKey: "0xabc", Outcome: "yes"}]
	require.NotNil(t, pos)

	assert.InDelta(t, -5.0, pos.Size, 1e-12)
	assert.InDelta(t, (0.60-0.50)*15, pos.RealizedPnl, 1e-12)
	assert.Equal(t, PositionOverSold, pos.State())
}

func TestReducePositions_UnsortedInput(t *testing.T) {
	trades := seqTrades("0xabc",
		fill{SideBuy, 0.40, 10},
		fill{SideBuy, 0.60, 10},
		fill{SideSell, 0.70, 15},
	)
	shuffled := []Trade{trades[2], trades[0], trades[1]}

	assert.Equal(t, ReducePositions(trades), ReducePositions(shuffled))
}

func TestReducePositions_SeparatesOutcomes(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	trades := []Trade{
		{Timestamp: base, MarketKey: "0xabc", Outcome: "Yes", Side: SideBuy, Price: 0.60, Size: 10},
		{Timestamp: base.Add(time.Minute), MarketKey: "0xabc", Outcome: "No", Side: SideBuy, Price: 0.40, Size: 10},
	}

	positions := ReducePositions(trades)
	assert.Len(t, positions, 2)
}

func TestReducePositions_SkipsKeylessTrades(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	trades := []Trade{
		{Timestamp: base, MarketKey: "", Outcome: "Yes", Side: SideBuy, Price: 0.60, Size: 10},
	}
	assert.Empty(t, ReducePositions(trades))
}
