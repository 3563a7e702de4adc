package polymarket

import "encoding/json"

// Raw Polymarket DTOs. Only used inside this package; the conversion to
// domain entities lives in mapping.go.
//
// The indexer feed is alias-heavy: the same logical field arrives under
// different names depending on which upstream produced the row, so every
// known alias is declared and mapping.go resolves the first non-empty one.

// --- Data API / indexer trade feed ---

// rawIndexerTrade is one trade row from the blockchain/indexer feed. Numeric
// fields use json.Number because some upstreams render them as strings.
type rawIndexerTrade struct {
	ID        string      `json:"id"`
	Timestamp json.Number `json:"timestamp"`
	Side      string      `json:"side"`
	Outcome   string      `json:"outcome"`
	Size      json.Number `json:"size"`
	Price     json.Number `json:"price"`

	// Market title aliases.
	Title       string `json:"title"`
	Question    string `json:"question"`
	Market      string `json:"market"`
	MarketTitle string `json:"marketTitle"`

	// Stable-key aliases.
	ConditionID      string `json:"conditionId"`
	ConditionIDSnake string `json:"condition_id"`
	MarketSlug       string `json:"marketSlug"`
	Slug             string `json:"slug"`

	// Token/asset id aliases.
	TokenIDSnake string `json:"token_id"`
	TokenID      string `json:"tokenId"`
	AssetIDSnake string `json:"asset_id"`
	Asset        string `json:"asset"`

	// Last-mark aliases.
	ClosedPrice   json.Number `json:"closedPrice"`
	ResolvedPrice json.Number `json:"resolvedPrice"`
	ExitPrice     json.Number `json:"exitPrice"`

	// Lifecycle flag aliases.
	Closed         *bool `json:"closed"`
	IsClosed       *bool `json:"is_closed"`
	Resolved       *bool `json:"resolved"`
	IsResolved     *bool `json:"is_resolved"`
	MarketResolved *bool `json:"marketResolved"`
}

// --- Gamma API (live price lookup) ---

// gammaMarket is the metadata Gamma returns per market. Gamma renders some
// numerics as JSON strings, hence json.Number.
type gammaMarket struct {
	ConditionID     string      `json:"conditionId"`
	Question        string      `json:"question"`
	Slug            string      `json:"slug"`
	OutcomePrices   string      `json:"outcomePrices"` // JSON-encoded array of strings
	LastTradePrice  json.Number `json:"lastTradePrice"`
	EndDateISO      string      `json:"endDateIso"`
	GameStartTime   string      `json:"gameStartTime"`
	EventStatus     string      `json:"eventStatus"`
	MarketAvatarURL string      `json:"marketAvatarUrl"`
	Active          bool        `json:"active"`
	Closed          bool        `json:"closed"`
	Resolved        bool        `json:"resolved"`
}

// --- CLOB market websocket ---

// wsPriceChange is a price_change event on the market channel.
type wsPriceChange struct {
	EventType string      `json:"event_type"`
	AssetID   string      `json:"asset_id"`
	Market    string      `json:"market"` // condition id
	Price     json.Number `json:"price"`
}
