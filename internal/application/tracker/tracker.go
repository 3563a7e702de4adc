package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hiiliketocode/polycopy/internal/cache"
	"github.com/hiiliketocode/polycopy/internal/domain"
	"github.com/hiiliketocode/polycopy/internal/ports"
)

// fleetConcurrency bounds how many wallets refresh at once.
const fleetConcurrency = 4

// Config controls the refresh loop.
type Config struct {
	Interval   time.Duration
	Window     domain.Window
	Filter     domain.FleetFilter
	SortBy     string
	SortDesc   bool
	Strategies []Strategy
}

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() Config {
	return Config{
		Interval: 60 * time.Second,
		Window:   domain.WindowAll,
		SortBy:   domain.SortByTotalPnl,
		SortDesc: true,
	}
}

// Strategy is one tracked wallet and its bookkeeping metadata.
type Strategy struct {
	ID              string
	Name            string
	Kind            domain.StrategyKind
	Wallet          string
	StartingBalance float64
	StartDate       time.Time
	Active          bool
}

// Deps are the injected ports. Ledger is the authoritative trade feed and wins
// merge collisions; Indexer is the secondary feed; Fallback covers indexer
// outages. Authority, Fallback, Cache and AssetSink are optional.
type Deps struct {
	Ledger    ports.TradeSource
	Indexer   ports.TradeSource
	Fallback  ports.TradeSource
	Prices    ports.PriceProvider
	Authority ports.PnlAuthority
	Storage   ports.Storage
	Notifier  ports.Notifier
	Cache     *cache.Cache

	// AssetSink receives the token ids of all open positions after each
	// cycle, so a live price stream can resubscribe.
	AssetSink func(ids []string)
}

// WalletReport is the outcome of one wallet refresh.
type WalletReport struct {
	Wallet       string
	Trades       []domain.Trade
	Positions    map[domain.PositionKey]*domain.Position
	Snapshot     domain.Snapshot
	EffectivePnl float64
	Daily        []domain.DailyPnl
	Window       domain.WindowSummary
}

// Tracker orchestrates the refresh cycle: fetch both feeds, merge against
// stored history, reduce to positions, valuate against live marks, persist
// and notify.
type Tracker struct {
	cfg  Config
	deps Deps

	mu   sync.RWMutex
	live *domain.PriceBook // marks pushed by the websocket stream
}

// New creates a Tracker with all dependencies injected.
func New(cfg Config, deps Deps) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Window == "" {
		cfg.Window = domain.WindowAll
	}
	if cfg.SortBy == "" {
		cfg.SortBy = domain.SortByTotalPnl
		cfg.SortDesc = true
	}
	return &Tracker{
		cfg:  cfg,
		deps: deps,
		live: domain.NewPriceBook(),
	}
}

// ApplyMark records a streamed price update. Streamed marks take priority
// over polled ones within a cycle.
func (t *Tracker) ApplyMark(marketKey string, p domain.PricePoint) {
	t.mu.Lock()
	t.live.Apply(marketKey, p)
	t.mu.Unlock()
}

// Run executes the refresh loop until the context is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	slog.Info("tracker starting",
		"interval", t.cfg.Interval,
		"strategies", len(t.cfg.Strategies),
		"window", t.cfg.Window,
	)

	if err := t.runCycle(ctx); err != nil {
		slog.Error("refresh cycle failed", "err", err)
	}

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("tracker stopped")
			return nil
		case <-ticker.C:
			if err := t.runCycle(ctx); err != nil {
				slog.Error("refresh cycle failed", "err", err)
			}
		}
	}
}

// RunOnce executes exactly one refresh cycle.
func (t *Tracker) RunOnce(ctx context.Context) error {
	return t.runCycle(ctx)
}

// runCycle refreshes every configured strategy, then aggregates and notifies
// the fleet view.
func (t *Tracker) runCycle(ctx context.Context) error {
	start := time.Now()

	summaries := make([]domain.StrategySummary, len(t.cfg.Strategies))
	assets := make([][]string, len(t.cfg.Strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fleetConcurrency)
	for i, s := range t.cfg.Strategies {
		i, s := i, s
		g.Go(func() error {
			report, err := t.RefreshWallet(gctx, s.Wallet)
			if err != nil {
				slog.Warn("wallet refresh failed", "strategy", s.Name, "wallet", s.Wallet, "err", err)
				summaries[i] = baseSummary(s)
				return nil
			}
			summaries[i] = summarizeStrategy(s, report)
			assets[i] = openAssets(report)
			if err := t.deps.Notifier.NotifyWallet(gctx, s.Wallet, report.Positions, report.Snapshot); err != nil {
				slog.Warn("notifier error", "wallet", s.Wallet, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("tracker.runCycle: %w", err)
	}

	t.publishAssets(assets)

	fleet := domain.FilterStrategies(summaries, t.cfg.Filter)
	domain.SortStrategies(fleet, t.cfg.SortBy, t.cfg.SortDesc)
	totals := domain.TotalFleet(fleet)
	if err := t.deps.Notifier.NotifyFleet(ctx, fleet, totals); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	slog.Info("refresh cycle complete",
		"strategies", len(fleet),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// RefreshWallet runs one full accounting pass for a single wallet.
func (t *Tracker) RefreshWallet(ctx context.Context, wallet string) (*WalletReport, error) {
	ledgerTrades, indexerTrades, err := t.fetchFeeds(ctx, wallet)
	if err != nil {
		return nil, err
	}

	stored, err := t.deps.Storage.GetTrades(ctx, wallet)
	if err != nil {
		slog.Warn("stored history unavailable, rebuilding from feeds", "wallet", wallet, "err", err)
		stored = nil
	}

	// Ledger merges last so it wins collisions against the indexer.
	merged := domain.MergeTrades(stored, indexerTrades)
	merged = domain.MergeTrades(merged, ledgerTrades)

	positions := domain.ReducePositions(merged)
	book, err := t.markPositions(ctx, positions)
	if err != nil {
		slog.Warn("price lookup incomplete", "wallet", wallet, "err", err)
	}
	snap := domain.Valuate(positions, book.Price)

	var authoritative *float64
	if t.deps.Authority != nil {
		authoritative, err = t.deps.Authority.FetchReportedPnl(ctx, wallet)
		if err != nil {
			slog.Warn("reported pnl unavailable", "wallet", wallet, "err", err)
			authoritative = nil
		}
	}
	effective := domain.PickEffective(authoritative, &snap.TotalPnl, 0)

	daily := domain.DailyRealized(merged)
	t.persist(ctx, wallet, merged, snap, daily)

	series, err := t.deps.Storage.GetDailyPnl(ctx, wallet)
	if err != nil {
		slog.Warn("daily series unavailable", "wallet", wallet, "err", err)
		series = daily
	}
	windowed := domain.FilterWindow(series, t.cfg.Window, time.Now())

	return &WalletReport{
		Wallet:       wallet,
		Trades:       merged,
		Positions:    positions,
		Snapshot:     snap,
		EffectivePnl: effective,
		Daily:        daily,
		Window:       domain.Summarize(windowed),
	}, nil
}

// fetchFeeds pulls the ledger and indexer feeds concurrently. An indexer
// failure falls back to the capped stale source; the cycle only fails when no
// feed at all delivered.
func (t *Tracker) fetchFeeds(ctx context.Context, wallet string) (ledger, indexer []domain.Trade, err error) {
	var ledgerErr, indexerErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if t.deps.Ledger == nil {
			return nil
		}
		ledger, ledgerErr = t.deps.Ledger.FetchTrades(gctx, wallet)
		return nil
	})
	g.Go(func() error {
		indexer, indexerErr = t.deps.Indexer.FetchTrades(gctx, wallet)
		if indexerErr != nil && t.deps.Fallback != nil {
			slog.Warn("indexer feed failed, using fallback", "wallet", wallet, "err", indexerErr)
			indexer, indexerErr = t.deps.Fallback.FetchTrades(gctx, wallet)
		}
		return nil
	})
	_ = g.Wait()

	if ledgerErr != nil && indexerErr != nil {
		return nil, nil, fmt.Errorf("tracker.fetchFeeds: all feeds failed: ledger: %v; indexer: %w", ledgerErr, indexerErr)
	}
	if ledgerErr != nil {
		slog.Warn("ledger feed failed", "wallet", wallet, "err", ledgerErr)
		ledger = nil
	}
	if indexerErr != nil {
		slog.Warn("indexer feed failed", "wallet", wallet, "err", indexerErr)
		indexer = nil
	}
	return ledger, indexer, nil
}

// markPositions assembles the price book for the open positions: streamed
// marks first, then the TTL cache, then one batched provider fetch for
// whatever remains.
func (t *Tracker) markPositions(ctx context.Context, positions map[domain.PositionKey]*domain.Position) (*domain.PriceBook, error) {
	book := domain.NewPriceBook()
	var missing []string
	seen := make(map[string]bool)

	t.mu.RLock()
	for _, pos := range positions {
		if pos.Closed() || seen[pos.MarketKey] {
			continue
		}
		seen[pos.MarketKey] = true

		if price, ok := t.live.Price(pos.MarketKey); ok {
			book.Apply(pos.MarketKey, domain.PricePoint{Price: price})
			continue
		}
		if t.deps.Cache != nil {
			if v, ok := t.deps.Cache.Get("price:" + pos.MarketKey); ok {
				if p, ok := v.(domain.PricePoint); ok {
					book.Apply(pos.MarketKey, p)
					continue
				}
			}
		}
		missing = append(missing, pos.MarketKey)
	}
	t.mu.RUnlock()

	if len(missing) == 0 {
		return book, nil
	}
	sort.Strings(missing)

	fetched, err := t.deps.Prices.FetchPrices(ctx, missing)
	for key, p := range fetched {
		book.Apply(key, p)
		if t.deps.Cache != nil {
			t.deps.Cache.Set("price:"+key, p)
		}
	}
	if err != nil {
		return book, fmt.Errorf("tracker.markPositions: %w", err)
	}
	return book, nil
}

// persist writes the merged history, the cycle snapshot and the daily series.
// Storage failures are logged, not fatal: the next cycle rebuilds from feeds.
func (t *Tracker) persist(ctx context.Context, wallet string, trades []domain.Trade, snap domain.Snapshot, daily []domain.DailyPnl) {
	if err := t.deps.Storage.SaveTrades(ctx, wallet, trades); err != nil {
		slog.Warn("storage error", "wallet", wallet, "err", err)
	}
	if err := t.deps.Storage.SaveSnapshot(ctx, wallet, snap, time.Now()); err != nil {
		slog.Warn("storage error", "wallet", wallet, "err", err)
	}
	for _, row := range daily {
		if err := t.deps.Storage.UpsertDailyPnl(ctx, wallet, row); err != nil {
			slog.Warn("storage error", "wallet", wallet, "date", row.Date, "err", err)
			return
		}
	}
}

// publishAssets hands the open-position token ids to the asset sink.
func (t *Tracker) publishAssets(perWallet [][]string) {
	if t.deps.AssetSink == nil {
		return
	}
	seen := make(map[string]bool)
	var ids []string
	for _, list := range perWallet {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	t.deps.AssetSink(ids)
}

// openAssets returns the token ids backing the report's open positions.
func openAssets(r *WalletReport) []string {
	open := make(map[string]bool)
	for _, pos := range r.Positions {
		if !pos.Closed() {
			open[pos.MarketKey] = true
		}
	}

	var ids []string
	seen := make(map[string]bool)
	for _, tr := range r.Trades {
		if tr.TokenID == "" || !open[tr.MarketKey] || seen[tr.TokenID] {
			continue
		}
		seen[tr.TokenID] = true
		ids = append(ids, tr.TokenID)
	}
	return ids
}

// baseSummary is the row shown for a strategy whose refresh failed.
func baseSummary(s Strategy) domain.StrategySummary {
	return domain.StrategySummary{
		ID:              s.ID,
		Name:            s.Name,
		Kind:            s.Kind,
		Wallet:          s.Wallet,
		Balance:         s.StartingBalance,
		StartingBalance: s.StartingBalance,
		CashAvailable:   s.StartingBalance,
		StartDate:       s.StartDate,
		Active:          s.Active,
	}
}

// summarizeStrategy folds one wallet report into its fleet row.
func summarizeStrategy(s Strategy, r *WalletReport) domain.StrategySummary {
	var exposure float64
	openPositions := 0
	for _, pos := range r.Positions {
		if pos.Closed() {
			continue
		}
		openPositions++
		if pos.Size > 0 {
			exposure += pos.Size * pos.AvgCost
		}
	}

	eligible := 0
	for _, tr := range r.Trades {
		if tr.AccountingEligible() {
			eligible++
		}
	}

	balance := s.StartingBalance + r.EffectivePnl
	return domain.StrategySummary{
		ID:              s.ID,
		Name:            s.Name,
		Kind:            s.Kind,
		Wallet:          s.Wallet,
		Balance:         balance,
		StartingBalance: s.StartingBalance,
		CashAvailable:   balance - exposure,
		TotalPnl:        r.EffectivePnl,
		RealizedPnl:     r.Snapshot.RealizedPnl,
		UnrealizedPnl:   r.Snapshot.UnrealizedPnl,
		TotalTrades:     eligible,
		OpenPositions:   openPositions,
		Won:             r.Snapshot.Won,
		Lost:            r.Snapshot.Lost,
		StartDate:       s.StartDate,
		Active:          s.Active,
	}
}
