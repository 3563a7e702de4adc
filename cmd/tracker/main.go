package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hiiliketocode/polycopy/config"
	"github.com/hiiliketocode/polycopy/internal/adapters/ledger"
	"github.com/hiiliketocode/polycopy/internal/adapters/notify"
	"github.com/hiiliketocode/polycopy/internal/adapters/polymarket"
	"github.com/hiiliketocode/polycopy/internal/adapters/storage"
	"github.com/hiiliketocode/polycopy/internal/application/tracker"
	"github.com/hiiliketocode/polycopy/internal/cache"
	"github.com/hiiliketocode/polycopy/internal/domain"
)

// priceTTL bounds how long a polled mark is reused between cycles.
const priceTTL = 30 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one refresh cycle and exit")
	wallet := flag.String("wallet", "", "track a single ad-hoc wallet instead of the configured fleet")
	window := flag.String("window", "", "P&L window: 1D|7D|30D|3M|6M|ALL (overrides config)")
	table := flag.Bool("table", false, "print the full position table (default: compact 1-line)")
	stream := flag.Bool("stream", false, "subscribe to the live price stream between cycles")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *window != "" {
		cfg.Tracker.Window = *window
	}
	setupLogger(cfg.Log)

	slog.Info("polycopy starting",
		"config", *configPath,
		"interval", cfg.RefreshInterval(),
		"window", cfg.Tracker.Window,
		"once", *once,
		"stream", *stream,
	)

	client := polymarket.NewClient(cfg.API.DataBase, cfg.API.GammaBase)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	priceCache, err := cache.New(1<<16, priceTTL)
	if err != nil {
		slog.Error("failed to build cache", "err", err)
		os.Exit(1)
	}

	deps := tracker.Deps{
		Indexer:   client,
		Fallback:  polymarket.NewFallbackSource(client),
		Prices:    client,
		Authority: client,
		Storage:   store,
		Notifier:  notify.NewConsole(*table),
		Cache:     priceCache,
	}
	if cfg.API.LedgerBase != "" {
		deps.Ledger = ledger.NewClient(cfg.API.LedgerBase, cfg.API.LedgerKey)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var ps *polymarket.Stream
	if *stream && !*once {
		updates := make(chan polymarket.PriceUpdate, 256)
		ps = polymarket.NewStream(cfg.API.StreamURL, updates)
		deps.AssetSink = ps.SetAssets

		t := tracker.New(trackerConfig(cfg, *wallet), deps)
		forwarded := make(chan struct{})
		go func() {
			defer close(forwarded)
			for u := range updates {
				t.ApplyMark(u.MarketKey, u.Point)
			}
		}()
		ps.Start(ctx)
		runTracker(ctx, t, false)
		ps.Wait()
		// No senders remain once the stream loop has exited.
		close(updates)
		<-forwarded
		return
	}

	t := tracker.New(trackerConfig(cfg, *wallet), deps)
	runTracker(ctx, t, *once)
}

func runTracker(ctx context.Context, t *tracker.Tracker, once bool) {
	if once {
		if err := t.RunOnce(ctx); err != nil {
			slog.Error("refresh failed", "err", err)
			os.Exit(1)
		}
		return
	}
	if err := t.Run(ctx); err != nil {
		slog.Error("tracker exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("polycopy stopped cleanly")
}

// trackerConfig maps the file config onto the tracker's runtime config. A
// non-empty adhocWallet replaces the configured fleet with one unnamed row.
func trackerConfig(cfg *config.Config, adhocWallet string) tracker.Config {
	out := tracker.Config{
		Interval: cfg.RefreshInterval(),
		Window:   domain.Window(cfg.Tracker.Window),
		SortBy:   cfg.Tracker.SortBy,
		SortDesc: cfg.Tracker.SortDesc,
		Filter: domain.FleetFilter{
			Kind:       domain.StrategyKind(cfg.Tracker.Kind),
			ActiveOnly: cfg.Tracker.ActiveOnly,
		},
	}

	if adhocWallet != "" {
		out.Strategies = []tracker.Strategy{{
			ID:     "adhoc",
			Name:   adhocWallet,
			Kind:   domain.KindForwardTest,
			Wallet: adhocWallet,
			Active: true,
		}}
		return out
	}

	for _, s := range cfg.Tracker.Strategies {
		start, err := time.ParseInLocation("2006-01-02", s.StartDate, time.UTC)
		if err != nil && s.StartDate != "" {
			slog.Warn("invalid start_date, ignoring", "strategy", s.Name, "start_date", s.StartDate)
		}
		out.Strategies = append(out.Strategies, tracker.Strategy{
			ID:              s.ID,
			Name:            s.Name,
			Kind:            domain.StrategyKind(s.Kind),
			Wallet:          s.Wallet,
			StartingBalance: s.StartingBalance,
			StartDate:       start,
			Active:          s.Active,
		})
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
