package storage

// sqlite.go — durable cache for trade histories plus an append-only snapshot
// log, one row per refresh cycle.
//
// Strategy:
//   - `trades`: the merged, deduplicated history per wallet. Replaced
//     wholesale on save; the merge itself happens in the domain layer.
//   - `snapshots`: one row per refresh cycle (uuid id), kept for trend
//     inspection. Pruned after 30 days on open.
//   - `daily_pnl`: the realized-daily-P&L series per wallet, upserted each
//     cycle from the merged history.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    wallet        TEXT    NOT NULL,
    trade_id      TEXT,
    ts            INTEGER NOT NULL,  -- epoch ms
    market        TEXT,
    market_key    TEXT,
    token_id      TEXT,
    outcome       TEXT,
    side          TEXT    NOT NULL,
    size          REAL    NOT NULL DEFAULT 0,
    price         REAL    NOT NULL DEFAULT 0,
    current_price REAL    NOT NULL DEFAULT 0,
    status        TEXT    NOT NULL DEFAULT 'Open'
);

CREATE TABLE IF NOT EXISTS snapshots (
    id             TEXT PRIMARY KEY,  -- uuid per refresh cycle
    wallet         TEXT     NOT NULL,
    taken_at       DATETIME NOT NULL,
    total_pnl      REAL     NOT NULL DEFAULT 0,
    realized_pnl   REAL     NOT NULL DEFAULT 0,
    unrealized_pnl REAL     NOT NULL DEFAULT 0,
    volume         REAL     NOT NULL DEFAULT 0,
    roi            REAL     NOT NULL DEFAULT 0,
    win_rate       REAL,              -- NULL when nothing was scorable
    won            INTEGER  NOT NULL DEFAULT 0,
    lost           INTEGER  NOT NULL DEFAULT 0,
    open_positions INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS daily_pnl (
    wallet       TEXT NOT NULL,
    date         TEXT NOT NULL,  -- YYYY-MM-DD
    realized_pnl REAL NOT NULL DEFAULT 0,
    pnl_to_date  REAL,
    PRIMARY KEY (wallet, date)
);

CREATE INDEX IF NOT EXISTS idx_trades_wallet  ON trades(wallet, ts DESC);
CREATE INDEX IF NOT EXISTS idx_snap_wallet    ON snapshots(wallet, taken_at DESC);
`

const retentionSnapshots = 30 * 24 * time.Hour

// SQLiteStorage implements ports.Storage using SQLite (pure Go, no CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at the given path.
func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", dsn, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.prune(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: prune: %w", err)
	}
	return s, nil
}

// prune drops snapshot rows past retention.
func (s *SQLiteStorage) prune() error {
	cutoff := time.Now().Add(-retentionSnapshots)
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE taken_at < ?`, cutoff)
	return err
}

// GetTrades returns the cached history for a wallet, newest first.
func (s *SQLiteStorage) GetTrades(ctx context.Context, wallet string) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, ts, market, market_key, token_id, outcome, side,
		       size, price, current_price, status
		FROM trades WHERE wallet = ? ORDER BY ts DESC`, wallet)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var ts int64
		var side, status string
		if err := rows.Scan(&t.ID, &ts, &t.Market, &t.MarketKey, &t.TokenID,
			&t.Outcome, &side, &t.Size, &t.Price, &t.CurrentPrice, &status); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan: %w", err)
		}
		t.Timestamp = time.UnixMilli(ts).UTC()
		t.Side = domain.Side(side)
		t.Status = domain.MarketStatus(status)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SaveTrades replaces the cached history for a wallet in one transaction.
func (s *SQLiteStorage) SaveTrades(ctx context.Context, wallet string, trades []domain.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE wallet = ?`, wallet); err != nil {
		return fmt.Errorf("storage.SaveTrades: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (wallet, trade_id, ts, market, market_key, token_id,
		                    outcome, side, size, price, current_price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, wallet, t.ID, t.Timestamp.UnixMilli(),
			t.Market, t.MarketKey, t.TokenID, t.Outcome, string(t.Side),
			t.Size, t.Price, t.CurrentPrice, string(t.Status)); err != nil {
			return fmt.Errorf("storage.SaveTrades: insert: %w", err)
		}
	}

	return tx.Commit()
}

// SaveSnapshot appends one refresh-cycle result.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, wallet string, snap domain.Snapshot, at time.Time) error {
	var winRate any
	if snap.WinRate != nil {
		winRate = *snap.WinRate
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, wallet, taken_at, total_pnl, realized_pnl,
		                       unrealized_pnl, volume, roi, win_rate, won, lost,
		                       open_positions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), wallet, at.UTC(), snap.TotalPnl, snap.RealizedPnl,
		snap.UnrealizedPnl, snap.Volume, snap.ROI, winRate, snap.Won, snap.Lost,
		snap.OpenPositions)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: %w", err)
	}
	return nil
}

// GetDailyPnl returns the daily series for a wallet, ascending by date.
func (s *SQLiteStorage) GetDailyPnl(ctx context.Context, wallet string) ([]domain.DailyPnl, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, realized_pnl, pnl_to_date
		FROM daily_pnl WHERE wallet = ? ORDER BY date ASC`, wallet)
	if err != nil {
		return nil, fmt.Errorf("storage.GetDailyPnl: %w", err)
	}
	defer rows.Close()

	var series []domain.DailyPnl
	for rows.Next() {
		var r domain.DailyPnl
		var toDate sql.NullFloat64
		if err := rows.Scan(&r.Date, &r.RealizedPnl, &toDate); err != nil {
			return nil, fmt.Errorf("storage.GetDailyPnl: scan: %w", err)
		}
		if toDate.Valid {
			v := toDate.Float64
			r.PnlToDate = &v
		}
		series = append(series, r)
	}
	return series, rows.Err()
}

// UpsertDailyPnl writes one day's row, last write wins.
func (s *SQLiteStorage) UpsertDailyPnl(ctx context.Context, wallet string, row domain.DailyPnl) error {
	var toDate any
	if row.PnlToDate != nil {
		toDate = *row.PnlToDate
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_pnl (wallet, date, realized_pnl, pnl_to_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (wallet, date) DO UPDATE SET
		    realized_pnl = excluded.realized_pnl,
		    pnl_to_date  = excluded.pnl_to_date`,
		wallet, row.Date, row.RealizedPnl, toDate)
	if err != nil {
		return fmt.Errorf("storage.UpsertDailyPnl: %w", err)
	}
	return nil
}

// Close shuts the database down cleanly.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
