package polymarket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wait must return once the context is cancelled; after that no goroutine
// sends on the updates channel, so the owner can close it.
func TestStream_StopsOnContextCancel(t *testing.T) {
	updates := make(chan PriceUpdate, 1)
	s := NewStream("ws://127.0.0.1:1", updates)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream loop did not stop after cancel")
	}

	close(updates)
	assert.Empty(t, updates)
}

func TestStream_HandleMessageSingle(t *testing.T) {
	updates := make(chan PriceUpdate, 4)
	s := NewStream("", updates)

	s.handleMessage(context.Background(),
		[]byte(`{"event_type":"price_change","market":"0xABC","price":"0.61"}`))

	require.Len(t, updates, 1)
	u := <-updates
	assert.Equal(t, "0xabc", u.MarketKey)
	assert.InDelta(t, 0.61, u.Point.Price, 1e-9)
}

func TestStream_HandleMessageBatchFiltersEventTypes(t *testing.T) {
	updates := make(chan PriceUpdate, 4)
	s := NewStream("", updates)

	s.handleMessage(context.Background(), []byte(`[
		{"event_type":"price_change","market":"0xaaa","price":"0.30"},
		{"event_type":"book","market":"0xbbb"},
		{"event_type":"price_change","market":"","price":"0.99"}
	]`))

	require.Len(t, updates, 1)
	u := <-updates
	assert.Equal(t, "0xaaa", u.MarketKey)
}
