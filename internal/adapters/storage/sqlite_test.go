package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_TradesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	trades := []domain.Trade{
		{
			ID:        "t2",
			Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Market:    "Will it rain?",
			MarketKey: "0xabc",
			Outcome:   "Yes",
			Side:      domain.SideSell,
			Size:      5,
			Price:     0.61,
			Status:    domain.StatusOpen,
		},
		{
			ID:        "t1",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Market:    "Will it rain?",
			MarketKey: "0xabc",
			Outcome:   "Yes",
			Side:      domain.SideBuy,
			Size:      10,
			Price:     0.42,
			Status:    domain.StatusOpen,
		},
	}

	require.NoError(t, s.SaveTrades(ctx, "0xwallet", trades))

	got, err := s.GetTrades(ctx, "0xwallet")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].ID, "newest first")
	assert.Equal(t, domain.SideBuy, got[1].Side)
	assert.Equal(t, trades[1].Timestamp, got[1].Timestamp)
}

func TestSQLiteStorage_SaveTradesReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []domain.Trade{{ID: "a", Timestamp: time.Now().UTC(), Side: domain.SideBuy, Status: domain.StatusOpen}}
	require.NoError(t, s.SaveTrades(ctx, "w", first))
	require.NoError(t, s.SaveTrades(ctx, "w", nil))

	got, err := s.GetTrades(ctx, "w")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStorage_TradesScopedByWallet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrades(ctx, "w1", []domain.Trade{
		{ID: "a", Timestamp: time.Now().UTC(), Side: domain.SideBuy, Status: domain.StatusOpen},
	}))

	got, err := s.GetTrades(ctx, "w2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStorage_SnapshotNullableWinRate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "w", domain.Snapshot{TotalPnl: 5}, time.Now()))

	wr := 62.5
	require.NoError(t, s.SaveSnapshot(ctx, "w", domain.Snapshot{WinRate: &wr}, time.Now()))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE wallet = 'w'`).Scan(&count))
	assert.Equal(t, 2, count)

	var nullCount int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE win_rate IS NULL`).Scan(&nullCount))
	assert.Equal(t, 1, nullCount)
}

func TestSQLiteStorage_DailyPnlUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	toDate := 10.0
	require.NoError(t, s.UpsertDailyPnl(ctx, "w", domain.DailyPnl{Date: "2026-03-01", RealizedPnl: 10, PnlToDate: &toDate}))
	require.NoError(t, s.UpsertDailyPnl(ctx, "w", domain.DailyPnl{Date: "2026-03-02", RealizedPnl: -3}))
	// Same day again: last write wins.
	require.NoError(t, s.UpsertDailyPnl(ctx, "w", domain.DailyPnl{Date: "2026-03-02", RealizedPnl: -4}))

	series, err := s.GetDailyPnl(ctx, "w")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "2026-03-01", series[0].Date)
	require.NotNil(t, series[0].PnlToDate)
	assert.Equal(t, 10.0, *series[0].PnlToDate)
	assert.Equal(t, -4.0, series[1].RealizedPnl)
	assert.Nil(t, series[1].PnlToDate)
}
