package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

const (
	tradesPerPage  = 500
	tradesMaxPages = 6

	// The stale fallback endpoint caps out around the 100 most recent rows.
	fallbackLimit = 100
)

// FetchTrades returns the normalized trade history of a wallet from the
// public Data API, paginating until the feed runs dry.
//
// Implements ports.TradeSource.
func (c *Client) FetchTrades(ctx context.Context, wallet string) ([]domain.Trade, error) {
	var all []domain.Trade

	for page := 0; page < tradesMaxPages; page++ {
		offset := page * tradesPerPage
		url := fmt.Sprintf("%s/trades?user=%s&limit=%d&offset=%d",
			c.dataBase, wallet, tradesPerPage, offset)

		var resp []rawIndexerTrade
		if err := c.get(ctx, c.dataLimiter, url, &resp); err != nil {
			return nil, fmt.Errorf("polymarket.FetchTrades: %w", err)
		}

		if len(resp) == 0 {
			break
		}

		all = append(all, mapIndexerTrades(resp)...)

		slog.Debug("fetched trades page",
			"wallet", shortWallet(wallet),
			"page", page,
			"count", len(resp),
			"total", len(all),
		)

		if len(resp) < tradesPerPage {
			break
		}
	}

	return all, nil
}

// FallbackSource is the stale secondary trade feed: same row shape as the
// primary, hard-capped at the most recent ~100 rows. It exists so a primary
// outage still yields a usable (if truncated) history; its rows merge through
// the same dedup path as everything else.
type FallbackSource struct {
	client *Client
}

// NewFallbackSource wraps a Client as the capped fallback feed.
func NewFallbackSource(c *Client) *FallbackSource {
	return &FallbackSource{client: c}
}

// FetchTrades implements ports.TradeSource against the activity endpoint.
func (f *FallbackSource) FetchTrades(ctx context.Context, wallet string) ([]domain.Trade, error) {
	url := fmt.Sprintf("%s/activity?user=%s&type=TRADE&limit=%d",
		f.client.dataBase, wallet, fallbackLimit)

	var resp []rawIndexerTrade
	if err := f.client.get(ctx, f.client.dataLimiter, url, &resp); err != nil {
		return nil, fmt.Errorf("polymarket.FallbackSource: %w", err)
	}

	return mapIndexerTrades(resp), nil
}

func shortWallet(w string) string {
	if len(w) <= 10 {
		return w
	}
	return w[:10] + "..."
}
