package ledger

import (
	"encoding/json"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// mapCopyTrades normalizes ledger rows, dropping the untimestamped.
func mapCopyTrades(raw []rawCopyTrade) []domain.Trade {
	trades := make([]domain.Trade, 0, len(raw))
	for _, r := range raw {
		if t, ok := mapCopyTrade(r); ok {
			trades = append(trades, t)
		}
	}
	return trades
}

// mapCopyTrade normalizes one ledger record. copied_at is preferred over
// created_at; a row with neither cannot be placed in time and is dropped.
func mapCopyTrade(r rawCopyTrade) (domain.Trade, bool) {
	tsRaw := parseNumber(r.CopiedAt)
	if tsRaw == 0 {
		tsRaw = parseNumber(r.CreatedAt)
	}
	ts := domain.NormalizeTimestamp(tsRaw)
	if ts.IsZero() {
		return domain.Trade{}, false
	}

	price := parseNumber(r.PriceWhenCopied)

	// The ledger omits entry_size on older rows; the invested amount and the
	// copied price recover the share count.
	size := parseNumber(r.EntrySize)
	if size == 0 && price > 0 {
		size = parseNumber(r.AmountInvested) / price
	}

	closed := parseNumber(r.UserClosedAt) > 0 ||
		(r.TraderStillHasPosition != nil && !*r.TraderStillHasPosition)
	resolved := r.MarketResolved != nil && *r.MarketResolved

	title := r.MarketTitle
	key := domain.DeriveMarketKey(r.MarketID, "", title)
	if title == "" {
		title = "Unknown Market"
	}

	return domain.Trade{
		ID:        r.ID,
		Timestamp: ts,
		Market:    title,
		MarketKey: key,
		Outcome:   r.Outcome,
		Side:      domain.NormalizeSide(r.Side),
		Size:      size,
		Price:     price,
		Status:    domain.DeriveStatus(closed, resolved),
	}, true
}

// parseNumber coerces a json.Number to float64, 0 for anything unparseable.
func parseNumber(n json.Number) float64 {
	if n == "" {
		return 0
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return domain.ParseAmount(n.String())
}
