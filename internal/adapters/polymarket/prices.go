package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// priceFetchWorkers bounds the concurrent Gamma lookups per batch.
const priceFetchWorkers = 8

// FetchPrices resolves live marks for a batch of market keys (condition ids)
// from Gamma. Markets that cannot be resolved are simply absent from the
// result — the valuator treats them as unscorable rather than failing the
// batch. Only a fully failed batch returns an error.
//
// Implements ports.PriceProvider.
func (c *Client) FetchPrices(ctx context.Context, marketKeys []string) (map[string]domain.PricePoint, error) {
	marks := make(map[string]domain.PricePoint, len(marketKeys))
	var mu sync.Mutex
	var failures int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceFetchWorkers)

	for _, key := range marketKeys {
		key := key
		g.Go(func() error {
			point, ok, err := c.fetchPrice(gctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				slog.Debug("price lookup failed", "market", key, "err", err)
				return nil // partial availability is fine
			}
			if ok {
				marks[key] = point
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("polymarket.FetchPrices: %w", err)
	}
	if len(marketKeys) > 0 && failures == len(marketKeys) {
		return nil, fmt.Errorf("polymarket.FetchPrices: all %d lookups failed", failures)
	}
	return marks, nil
}

// fetchPrice resolves a single market's mark. A resolved market yields its
// terminal price ($1 winner / $0 loser) so bonded positions stay scorable.
func (c *Client) fetchPrice(ctx context.Context, conditionID string) (domain.PricePoint, bool, error) {
	url := fmt.Sprintf("%s/markets?condition_ids=%s", c.gammaBase, conditionID)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return domain.PricePoint{}, false, err
	}
	if len(resp) == 0 {
		return domain.PricePoint{}, false, nil
	}

	gm := resp[0]
	price := parseNumber(gm.LastTradePrice)
	if p, ok := firstOutcomePrice(gm.OutcomePrices); ok {
		price = p
	}

	return domain.PricePoint{
		Price:    price,
		Closed:   gm.Closed,
		Resolved: gm.Resolved,
	}, true, nil
}

// firstOutcomePrice parses Gamma's outcomePrices field, a JSON-encoded array
// of decimal strings, and returns the first entry.
func firstOutcomePrice(encoded string) (float64, bool) {
	if encoded == "" {
		return 0, false
	}
	var prices []string
	if err := json.Unmarshal([]byte(encoded), &prices); err != nil || len(prices) == 0 {
		return 0, false
	}
	return domain.ParseAmount(prices[0]), true
}
