package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveMarketKey(t *testing.T) {
	assert.Equal(t, "0xabc", DeriveMarketKey(" 0xABC ", "slug", "Title"))
	assert.Equal(t, "will-it-rain", DeriveMarketKey("", "Will-It-Rain", "Title"))
	assert.Equal(t, "will it rain?", DeriveMarketKey("", "", "Will It Rain?"))
	assert.Equal(t, "", DeriveMarketKey("", "  ", ""))
}

func TestNormalizeSide(t *testing.T) {
	assert.Equal(t, SideSell, NormalizeSide("sell"))
	assert.Equal(t, SideSell, NormalizeSide(" SELL "))
	assert.Equal(t, SideBuy, NormalizeSide("buy"))
	assert.Equal(t, SideBuy, NormalizeSide(""), "missing side defaults to BUY")
	assert.Equal(t, SideBuy, NormalizeSide("garbage"))
}

func TestDeriveStatus_Precedence(t *testing.T) {
	assert.Equal(t, StatusBonded, DeriveStatus(true, true), "resolved beats closed")
	assert.Equal(t, StatusBonded, DeriveStatus(false, true))
	assert.Equal(t, StatusTraderClosed, DeriveStatus(true, false))
	assert.Equal(t, StatusOpen, DeriveStatus(false, false))
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 0.45, ParseAmount("0.45"))
	assert.Equal(t, 0.45, ParseAmount("0.45 USDC"))
	assert.Equal(t, -2.5, ParseAmount("-2.5"))
	assert.Equal(t, 12.0, ParseAmount(" 12"))
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 0.0, ParseAmount("n/a"))
	assert.Equal(t, 0.0, ParseAmount("$5"), "leading numeral only — no currency prefix")
}

func TestNormalizeTimestamp_SecondsHeuristic(t *testing.T) {
	// 1.7e9 is seconds, 1.7e12 is already milliseconds; both land on the
	// same instant.
	sec := NormalizeTimestamp(1700000000)
	ms := NormalizeTimestamp(1700000000000)
	assert.Equal(t, ms, sec)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), sec)

	assert.True(t, NormalizeTimestamp(0).IsZero())
	assert.True(t, NormalizeTimestamp(-5).IsZero())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", " "))
}

func TestTrade_AccountingEligible(t *testing.T) {
	assert.False(t, Trade{}.AccountingEligible())
	assert.True(t, Trade{MarketKey: "0xabc"}.AccountingEligible())
}
