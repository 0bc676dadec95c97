package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/clock"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/config"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/logger"
	"PriceBoard/internal/notifier"
	"PriceBoard/internal/scheduler"
	"PriceBoard/internal/server"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	var envFiles []string
	if _, err := os.Stat(".env"); err == nil {
		envFiles = append(envFiles, ".env")
	}

	cfg, err := config.Load(cfgPath, envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs how run ended and flushes the logger. run has returned, so
// its deferred cleanup has already happened.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("priceboard stopped with error", zap.Error(err))
		code = 1
	} else {
		log.Info("priceboard stopped")
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	equity := newEquityFetcher(cfg)
	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	log.Info("providers ready",
		zap.String("equity", equity.Name()),
		zap.Strings("exchanges", registry.Names()))

	col := collector.NewCollector(equity, registry, log.Named("collector"))
	col.Limit = cfg.Providers.CryptoLimit
	col.Timeout = cfg.Providers.Timeout

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	c := cache.New(store, clock.Real{}, log.Named("cache"))
	defer c.Close()

	board := dashboard.NewBoard(col, c, equity.Name(), log.Named("board"))
	board.StockTTL = cfg.Cache.StockTTL
	board.CryptoTTL = cfg.Cache.CryptoTTL

	srv, err := server.NewServer(server.Config{
		Addr:      cfg.Server.Addr,
		Board:     board,
		Exchanges: registry,
		Defaults: server.Params{
			StockParams: dashboard.StockParams{
				Ticker:   cfg.Dashboard.Ticker,
				Period:   cfg.Dashboard.Period,
				Interval: cfg.Dashboard.Interval,
			},
			CryptoParams: dashboard.CryptoParams{
				Pair:     cfg.Dashboard.Pair,
				Exchange: cfg.Dashboard.Exchange,
			},
			AutoRefresh:    cfg.Dashboard.AutoRefresh,
			RefreshSeconds: cfg.Dashboard.RefreshSeconds,
		},
		Clock:  clock.Real{},
		Logger: log.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	var sender scheduler.Notifier = notifier.LogNotifier{Logger: log.Named("digest")}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Providers.Proxy, log.Named("telegram"))
		sender = tn
	}

	watch := scheduler.Watchlist{
		Stocks:   cfg.Digest.Stocks,
		Period:   cfg.Digest.Period,
		Interval: cfg.Digest.Interval,
	}
	for _, cw := range cfg.Digest.Cryptos {
		watch.Cryptos = append(watch.Cryptos, dashboard.CryptoParams{Pair: cw.Pair, Exchange: cw.Exchange})
	}
	sched := scheduler.NewScheduler(ctx, board, sender, registry, watch, log.Named("scheduler"))
	if err := sched.RegisterDigest(cfg.Digest.Cron); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	if tn != nil && cfg.Telegram.Polling {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, sending digest now")
		g.Go(func() error {
			sched.RunDigestNow()
			return nil
		})
	}

	log.Info("priceboard is running", zap.String("addr", srv.Addr()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newEquityFetcher(cfg *config.Config) collector.EquityFetcher {
	p := cfg.Providers
	if p.Equity.Source == config.SourceREST {
		return collector.NewRESTFetcher(p.Equity.BaseURL, p.Equity.APIKey, p.Proxy, p.Timeout)
	}
	return collector.NewYahooFetcher(p.Equity.BaseURL, p.Proxy, p.Timeout)
}

func newRegistry(cfg *config.Config) (*collector.Registry, error) {
	p := cfg.Providers
	binanceCfg := collector.BinanceConfig{
		SpotBaseURL:    p.Binance.SpotBaseURL,
		FuturesBaseURL: p.Binance.FuturesBaseURL,
		ProxyURL:       p.Proxy,
		Timeout:        p.Timeout,
	}
	registry := collector.NewRegistry()
	for _, name := range p.Exchanges {
		switch name {
		case "binance":
			registry.Register(collector.NewBinanceFetcher(binanceCfg))
		case "binanceusdm":
			registry.Register(collector.NewBinanceFuturesFetcher(binanceCfg))
		case "gate":
			registry.Register(collector.NewGateFetcher(collector.GateConfig{
				BaseURL:  p.Gate.BaseURL,
				ProxyURL: p.Proxy,
				Timeout:  p.Timeout,
			}))
		case "mock":
			registry.Register(&collector.MockFetcher{Price: 42000})
		default:
			return nil, fmt.Errorf("%w: %q", collector.ErrUnsupportedExchange, name)
		}
	}
	return registry, nil
}

func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		s, err := cache.NewSQLiteStore(cfg.Cache.SQLitePath, log.Named("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("init sqlite cache: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		s, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		return s, nil
	default:
		return cache.NewMemoryStore(), nil
	}
}
