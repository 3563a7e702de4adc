package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultDataBase  = "https://data-api.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Rate limits at 60% of the documented API limits.
	// Data API: 500/10s → 30/s
	dataRatePerSec = 30
	// Gamma /markets: 300/10s → 18/s
	gammaRatePerSec = 18

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is the Polymarket HTTP client with rate limiting and retries.
type Client struct {
	http         *http.Client
	dataBase     string
	gammaBase    string
	dataLimiter  *rate.Limiter
	gammaLimiter *rate.Limiter
}

// NewClient creates a Client with the given base URLs. Empty arguments fall
// back to the production endpoints.
func NewClient(dataBase, gammaBase string) *Client {
	if dataBase == "" {
		dataBase = defaultDataBase
	}
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	return &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		dataBase:     dataBase,
		gammaBase:    gammaBase,
		dataLimiter:  rate.NewLimiter(dataRatePerSec, 10),
		gammaLimiter: rate.NewLimiter(gammaRatePerSec, 10),
	}
}

// get performs a GET with rate limiting and retries.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry runs the request with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep waits with exponential backoff, respecting the context.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
