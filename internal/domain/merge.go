package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// merge.go — cross-source trade history merge.
//
// The ledger feed and the blockchain indexer can report the same fill with
// sub-second timestamp jitter and floating rounding differences, so the dedup
// key quantizes price/size to 6 decimals and the timestamp to the nearest
// second. Rounding, not truncation: jitter straddling a second boundary
// (x.7s vs x+1.1s) must still collapse.

// dedupKey identifies a fill across sources.
func dedupKey(t Trade) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d",
		t.MarketKey,
		strings.ToLower(strings.TrimSpace(t.Outcome)),
		t.Side,
		int64(math.Round(t.Price*1e6)),
		int64(math.Round(t.Size*1e6)),
		int64(math.Round(float64(t.Timestamp.UnixMilli())/1000)),
	)
}

// MergeTrades combines two trade lists into one duplicate-free history,
// sorted descending by timestamp (newest first). When two records collide on
// the dedup key the incoming one wins; incoming data is assumed fresher than
// what was previously cached.
//
// The function is pure and idempotent under repetition: applying the same
// (existing, incoming) pair twice yields an identical result. Associativity
// across different groupings is NOT guaranteed bit-exactly because collisions
// tie-break by arrival order.
//
// Trades without a market key cannot be deduplicated; they are carried
// through untouched so callers can still display them.
func MergeTrades(existing, incoming []Trade) []Trade {
	merged := make([]Trade, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	// Incoming first so it wins key collisions.
	for _, list := range [][]Trade{incoming, existing} {
		for _, t := range list {
			if !t.AccountingEligible() {
				merged = append(merged, t)
				continue
			}
			k := dedupKey(t)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, t)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
