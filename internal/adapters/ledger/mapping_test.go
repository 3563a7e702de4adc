package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestMapCopyTrade_Canonical(t *testing.T) {
	raw := rawCopyTrade{
		ID:              "ct1",
		MarketID:        "0xFEED",
		MarketTitle:     "Chiefs to win",
		Outcome:         "Chiefs",
		Side:            "buy",
		PriceWhenCopied: json.Number("0.55"),
		EntrySize:       json.Number("20"),
		CopiedAt:        json.Number("1760000000"),
	}

	trade, ok := mapCopyTrade(raw)
	require.True(t, ok)
	assert.Equal(t, "0xfeed", trade.MarketKey)
	assert.Equal(t, domain.SideBuy, trade.Side)
	assert.Equal(t, 20.0, trade.Size)
	assert.Equal(t, 0.55, trade.Price)
	assert.Equal(t, domain.StatusOpen, trade.Status)
}

func TestMapCopyTrade_EntrySizeDerivedFromInvested(t *testing.T) {
	raw := rawCopyTrade{
		MarketID:        "0xfeed",
		PriceWhenCopied: json.Number("0.50"),
		AmountInvested:  json.Number("10"),
		CopiedAt:        json.Number("1760000000"),
	}

	trade, ok := mapCopyTrade(raw)
	require.True(t, ok)
	assert.InDelta(t, 20.0, trade.Size, 1e-12) // 10 / 0.50
}

func TestMapCopyTrade_NoPriceNoDerivedSize(t *testing.T) {
	raw := rawCopyTrade{
		MarketID:       "0xfeed",
		AmountInvested: json.Number("10"),
		CopiedAt:       json.Number("1760000000"),
	}

	trade, ok := mapCopyTrade(raw)
	require.True(t, ok)
	assert.Equal(t, 0.0, trade.Size, "zero price must not divide")
}

func TestMapCopyTrade_CreatedAtFallback(t *testing.T) {
	raw := rawCopyTrade{MarketID: "0xfeed", CreatedAt: json.Number("1760000000")}
	trade, ok := mapCopyTrade(raw)
	require.True(t, ok)
	assert.False(t, trade.Timestamp.IsZero())

	_, ok = mapCopyTrade(rawCopyTrade{MarketID: "0xfeed"})
	assert.False(t, ok, "no timestamp at all → dropped")
}

func TestMapCopyTrade_Status(t *testing.T) {
	resolved, _ := mapCopyTrade(rawCopyTrade{
		MarketID:       "0xfeed",
		CopiedAt:       json.Number("1760000000"),
		MarketResolved: boolPtr(true),
		UserClosedAt:   json.Number("1760000500"),
	})
	assert.Equal(t, domain.StatusBonded, resolved.Status, "resolved beats closed")

	userClosed, _ := mapCopyTrade(rawCopyTrade{
		MarketID:     "0xfeed",
		CopiedAt:     json.Number("1760000000"),
		UserClosedAt: json.Number("1760000500"),
	})
	assert.Equal(t, domain.StatusTraderClosed, userClosed.Status)

	traderGone, _ := mapCopyTrade(rawCopyTrade{
		MarketID:               "0xfeed",
		CopiedAt:               json.Number("1760000000"),
		TraderStillHasPosition: boolPtr(false),
	})
	assert.Equal(t, domain.StatusTraderClosed, traderGone.Status)
}

func TestMapCopyTrades_DropsOnlyUnusable(t *testing.T) {
	rows := []rawCopyTrade{
		{MarketID: "0xa", CopiedAt: json.Number("1760000000")},
		{MarketID: "0xb"}, // no timestamp
	}
	assert.Len(t, mapCopyTrades(rows), 1)
}
