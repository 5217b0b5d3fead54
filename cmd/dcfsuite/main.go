package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"DCFSuite/internal/cache"
	"DCFSuite/internal/collector"
	"DCFSuite/internal/config"
	"DCFSuite/internal/notifier"
	"DCFSuite/internal/pipeline"
	"DCFSuite/internal/scheduler"
	"DCFSuite/internal/server"
	"DCFSuite/internal/wacc"
	"DCFSuite/internal/watchlist"
	"DCFSuite/pkg/logger"
)

const usage = `usage:
  dcfsuite value -ticker TICKER [-config path]
  dcfsuite wacc  -ticker TICKER [-config path]
  dcfsuite serve [-config path]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config.yaml")
	ticker := fs.String("ticker", "", "ticker symbol")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	store := openStore(cfg, log)
	defer store.Close()

	runner := newRunner(cfg, store, log)

	switch cmd {
	case "value", "wacc":
		if *ticker == "" {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		if err := runOnce(cmd, *ticker, cfg, runner); err != nil {
			log.Error().Err(err).Str("ticker", *ticker).Msg("run failed")
			os.Exit(1)
		}
	case "serve":
		if err := serve(cfg, runner, store, log); err != nil {
			log.Fatal().Err(err).Msg("serve")
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	timeout := time.Duration(cfg.DataSource.TimeoutSeconds) * time.Second
	switch strings.ToLower(cfg.DataSource.Provider) {
	case "gateway":
		return collector.NewGatewayFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, timeout)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, timeout, cfg.DataSource.RequestsPerSecond)
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) cache.Store {
	if !cfg.Cache.Enabled || cfg.Cache.SQLitePath == "" {
		return cache.NewNoopStore()
	}
	s, err := cache.NewSQLiteStore(cfg.Cache.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite cache failed, using noop")
		return cache.NewNoopStore()
	}
	return s
}

func newRunner(cfg *config.Config, store cache.Store, log zerolog.Logger) *pipeline.Runner {
	fetcher := newFetcher(cfg)
	log.Info().Str("provider", fetcher.Name()).Msg("data source")

	col := collector.NewCollector(fetcher, log)
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	source := cache.NewCachedCollector(col, store, ttl, log)
	return pipeline.NewRunner(source, wacc.New(cfg.CreditSpreads, log), log)
}

func runOnce(cmd, ticker string, cfg *config.Config, runner *pipeline.Runner) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var out interface{}
	if cmd == "wacc" {
		report, err := runner.CostOfCapital(ctx, cfg.Defaults.CapitalRequest(ticker))
		if err != nil {
			return err
		}
		out = report
	} else {
		req, err := cfg.Defaults.Request(ticker)
		if err != nil {
			return err
		}
		report, err := runner.Run(ctx, req)
		if err != nil {
			return err
		}
		out = report
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func serve(cfg *config.Config, runner *pipeline.Runner, store cache.Store, log zerolog.Logger) error {
	log.Info().Msg("DCFSuite starting")

	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		return fmt.Errorf("init watchlist: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sender notifier.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, runner, cfg.Defaults.Request, wl, sender, store, log)
	if err := sched.RegisterAll(cfg.Schedule.WatchCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, revaluing watchlist now")
		go sched.RunWatchNow()
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		Log:      log,
		Valuer:   runner,
		Requests: cfg.Defaults.Request,
		Bands:    cfg.CreditSpreads,
		DevMode:  cfg.Server.DevMode,
	})
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("DCFSuite stopped")
	return nil
}
