package domain

import (
	"strconv"
	"strings"
	"time"
)

// Side is the direction of a fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// MarketStatus describes the lifecycle of the market a trade belongs to.
type MarketStatus string

const (
	// StatusOpen — market is still trading.
	StatusOpen MarketStatus = "Open"
	// StatusTraderClosed — the copied trader exited, market still open.
	StatusTraderClosed MarketStatus = "TraderClosed"
	// StatusBonded — market resolved, tokens redeemable at $1/$0.
	StatusBonded MarketStatus = "Bonded"
)

// Trade is a canonical fill after normalization. Both upstream feeds (the
// internal copy-trade ledger and the blockchain indexer) map into this shape.
type Trade struct {
	ID           string
	Timestamp    time.Time
	Market       string // display title, not a stable key
	MarketKey    string // stable identifier, see DeriveMarketKey
	TokenID      string
	Outcome      string
	Side         Side
	Size         float64 // shares, >= 0
	Price        float64 // probability-as-price in (0,1]
	CurrentPrice float64 // last known mark, 0 if unknown
	Status       MarketStatus
}

// AccountingEligible reports whether the trade can participate in dedup and
// position accounting. Trades without a stable market key are display-only.
func (t Trade) AccountingEligible() bool {
	return t.MarketKey != ""
}

// DeriveMarketKey returns the stable market identifier: the first non-empty
// of conditionID, slug and title, lowercased and trimmed.
func DeriveMarketKey(conditionID, slug, title string) string {
	for _, s := range []string{conditionID, slug, title} {
		if k := strings.ToLower(strings.TrimSpace(s)); k != "" {
			return k
		}
	}
	return ""
}

// NormalizeSide uppercases a free-text side field, defaulting to BUY.
func NormalizeSide(s string) Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELL":
		return SideSell
	default:
		return SideBuy
	}
}

// DeriveStatus maps upstream closed/resolved flags to a MarketStatus.
// Resolved takes precedence over closed.
func DeriveStatus(closed, resolved bool) MarketStatus {
	switch {
	case resolved:
		return StatusBonded
	case closed:
		return StatusTraderClosed
	default:
		return StatusOpen
	}
}

// ParseAmount coerces a number rendered as free text into a float64. It
// accepts a leading numeral ("0.45 USDC" → 0.45) and returns 0 for anything
// unparseable, so downstream arithmetic never sees NaN.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeTimestamp interprets a raw epoch value that may be in seconds or
// milliseconds. Values below 1e10 (anything before ~Nov 2286 when read as
// milliseconds) are treated as seconds.
func NormalizeTimestamp(raw float64) time.Time {
	if raw <= 0 {
		return time.Time{}
	}
	ms := raw
	if raw < 1e10 {
		ms = raw * 1000
	}
	sec := int64(ms) / 1000
	nsec := (int64(ms) % 1000) * int64(time.Millisecond)
	return time.Unix(sec, nsec).UTC()
}

// FirstNonEmpty returns the first non-empty string after trimming, or "".
// Used by the feed normalizers to resolve alias-heavy upstream fields.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}
