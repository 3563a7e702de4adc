package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// Client fetches a wallet's copy-trade history from the internal ledger
// service. This is the authoritative feed: the tracker merges it on top of
// the indexer history so ledger rows win dedup collisions.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a ledger client. apiKey may be empty for unauthenticated
// deployments.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// FetchTrades implements ports.TradeSource.
func (c *Client) FetchTrades(ctx context.Context, wallet string) ([]domain.Trade, error) {
	url := fmt.Sprintf("%s/copy-trades?wallet=%s", c.baseURL, wallet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger.FetchTrades: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger.FetchTrades: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ledger.FetchTrades: status %d: %s", resp.StatusCode, body)
	}

	var raw []rawCopyTrade
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ledger.FetchTrades: decode: %w", err)
	}

	return mapCopyTrades(raw), nil
}
