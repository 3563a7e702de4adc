package ports

import (
	"context"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

// PriceProvider resolves live marks for a batch of market keys. A partially
// filled result is fine — markets without a mark stay unscorable.
type PriceProvider interface {
	FetchPrices(ctx context.Context, marketKeys []string) (map[string]domain.PricePoint, error)
}
