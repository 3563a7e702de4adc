package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// leaderboardEntry is one row of the data API profit leaderboard.
type leaderboardEntry struct {
	ProxyWallet string      `json:"proxyWallet"`
	Amount      json.Number `json:"amount"`
}

// FetchReportedPnl returns the leaderboard's all-time P&L figure for a wallet,
// or nil when the wallet has no leaderboard entry. The reported figure is
// treated as authoritative over locally computed stats.
func (c *Client) FetchReportedPnl(ctx context.Context, wallet string) (*float64, error) {
	reqURL := fmt.Sprintf("%s/leaderboard?window=all&limit=1&address=%s",
		c.dataBase, url.QueryEscape(wallet))

	var entries []leaderboardEntry
	if err := c.get(ctx, c.dataLimiter, reqURL, &entries); err != nil {
		return nil, fmt.Errorf("polymarket.FetchReportedPnl: %w", err)
	}

	for _, e := range entries {
		if strings.EqualFold(e.ProxyWallet, wallet) {
			v := parseNumber(e.Amount)
			return &v, nil
		}
	}
	return nil, nil
}
