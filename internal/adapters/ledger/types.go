package ledger

import "encoding/json"

// rawCopyTrade is one row of the internal copy-trade ledger. The field names
// are the contract with the ledger service and must not drift.
type rawCopyTrade struct {
	ID                     string      `json:"id"`
	MarketID               string      `json:"market_id"`
	MarketTitle            string      `json:"market_title"`
	Outcome                string      `json:"outcome"`
	Side                   string      `json:"side"`
	PriceWhenCopied        json.Number `json:"price_when_copied"`
	EntrySize              json.Number `json:"entry_size"`
	AmountInvested         json.Number `json:"amount_invested"`
	CopiedAt               json.Number `json:"copied_at"`
	CreatedAt              json.Number `json:"created_at"`
	MarketResolved         *bool       `json:"market_resolved"`
	TraderStillHasPosition *bool       `json:"trader_still_has_position"`
	UserClosedAt           json.Number `json:"user_closed_at"`
}
