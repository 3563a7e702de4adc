package polymarket

import (
	"encoding/json"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// mapIndexerTrades converts raw indexer rows to canonical trades, dropping
// records that cannot be timestamped.
func mapIndexerTrades(raw []rawIndexerTrade) []domain.Trade {
	trades := make([]domain.Trade, 0, len(raw))
	for _, r := range raw {
		if t, ok := mapIndexerTrade(r); ok {
			trades = append(trades, t)
		}
	}
	return trades
}

// mapIndexerTrade normalizes one indexer record. A record without a usable
// timestamp is unusable: there is no position in time to account it against.
// Everything else is coerced to a safe default instead of rejected — the
// upstream feeds are known to be inconsistent and a degraded-but-complete
// history beats a failed fetch.
func mapIndexerTrade(r rawIndexerTrade) (domain.Trade, bool) {
	ts := domain.NormalizeTimestamp(parseNumber(r.Timestamp))
	if ts.IsZero() {
		return domain.Trade{}, false
	}

	title := domain.FirstNonEmpty(r.Title, r.Question, r.Market, r.MarketTitle)

	// The key derives from the real upstream fields; the display placeholder
	// below must never fabricate one. Keyless rows render but are excluded
	// from accounting.
	key := domain.DeriveMarketKey(
		domain.FirstNonEmpty(r.ConditionID, r.ConditionIDSnake),
		domain.FirstNonEmpty(r.MarketSlug, r.Slug),
		title,
	)
	if title == "" {
		title = "Unknown Market"
	}

	closed := flag(r.Closed) || flag(r.IsClosed)
	resolved := flag(r.Resolved) || flag(r.IsResolved) || flag(r.MarketResolved)

	return domain.Trade{
		ID:           r.ID,
		Timestamp:    ts,
		Market:       title,
		MarketKey:    key,
		TokenID:      domain.FirstNonEmpty(r.TokenIDSnake, r.TokenID, r.AssetIDSnake, r.Asset),
		Outcome:      r.Outcome,
		Side:         domain.NormalizeSide(r.Side),
		Size:         parseNumber(r.Size),
		Price:        parseNumber(r.Price),
		CurrentPrice: parseNumber(pickNumber(r.ClosedPrice, r.ResolvedPrice, r.ExitPrice)),
		Status:       domain.DeriveStatus(closed, resolved),
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

// pickNumber returns the first non-empty alias.
func pickNumber(candidates ...json.Number) json.Number {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func flag(b *bool) bool {
	return b != nil && *b
}
