package polymarket

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hiiliketocode/polycopy/internal/domain"
)

const (
	defaultWSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterPercent  = 0.2

	wsWriteTimeout = 10 * time.Second
)

// PriceUpdate is one progressive fill of the price map: the latest mark for
// a market key, to be applied last-write-wins.
type PriceUpdate struct {
	MarketKey string
	Point     domain.PricePoint
}

// Stream subscribes to the CLOB market websocket and pushes price changes as
// they happen, so the price book keeps filling between refresh cycles.
// Reconnects with exponential backoff and jitter.
type Stream struct {
	url      string
	updates  chan<- PriceUpdate
	conn     *websocket.Conn
	connMu   sync.Mutex
	backoff  time.Duration
	assetIDs []string
	assetMu  sync.RWMutex
	wg       sync.WaitGroup
}

// NewStream creates a market-channel subscriber. Empty url uses production.
func NewStream(url string, updates chan<- PriceUpdate) *Stream {
	if url == "" {
		url = defaultWSURL
	}
	return &Stream{
		url:     url,
		updates: updates,
		backoff: initialBackoff,
	}
}

// SetAssets replaces the token ids to subscribe to on the next (re)connect.
func (s *Stream) SetAssets(ids []string) {
	s.assetMu.Lock()
	defer s.assetMu.Unlock()
	s.assetIDs = ids
}

// Start runs the connect/read/reconnect loop until the context is done.
func (s *Stream) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Wait blocks until the loop has exited.
func (s *Stream) Wait() {
	s.wg.Wait()
}

func (s *Stream) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			slog.Info("price stream stopping", "reason", "context cancelled")
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			slog.Error("price stream connect failed", "err", err, "backoff", s.backoff)
			s.waitBackoff(ctx)
			continue
		}
		s.backoff = initialBackoff

		if err := s.readLoop(ctx); err != nil {
			slog.Warn("price stream read error", "err", err)
		}
		s.closeConnection()

		select {
		case <-ctx.Done():
			return
		default:
			s.waitBackoff(ctx)
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	s.assetMu.RLock()
	assets := make([]string, len(s.assetIDs))
	copy(assets, s.assetIDs)
	s.assetMu.RUnlock()

	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		conn.Close()
		return err
	}
	if err := conn.WriteJSON(map[string]any{"type": "market", "assets_ids": assets}); err != nil {
		conn.Close()
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	slog.Info("price stream connected", "assets", len(assets))
	return nil
}

func (s *Stream) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handleMessage(ctx, msg)
	}
}

// handleMessage decodes price_change events and forwards them. The feed
// sometimes batches events into a JSON array; both shapes are handled.
func (s *Stream) handleMessage(ctx context.Context, msg []byte) {
	var events []wsPriceChange
	if strings.HasPrefix(strings.TrimSpace(string(msg)), "[") {
		if err := json.Unmarshal(msg, &events); err != nil {
			return
		}
	} else {
		var one wsPriceChange
		if err := json.Unmarshal(msg, &one); err != nil {
			return
		}
		events = append(events, one)
	}

	for _, ev := range events {
		if ev.EventType != "price_change" || ev.Market == "" {
			continue
		}
		update := PriceUpdate{
			MarketKey: domain.DeriveMarketKey(ev.Market, "", ""),
			Point:     domain.PricePoint{Price: parseNumber(ev.Price)},
		}
		select {
		case s.updates <- update:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) closeConnection() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *Stream) waitBackoff(ctx context.Context) {
	jitter := 1 + jitterPercent*(2*rand.Float64()-1)
	wait := time.Duration(float64(s.backoff) * jitter)

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return
	}

	s.backoff = time.Duration(float64(s.backoff) * backoffFactor)
	if s.backoff > maxBackoff {
		s.backoff = maxBackoff
	}
}
