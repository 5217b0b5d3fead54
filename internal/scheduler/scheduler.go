package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"DCFSuite/internal/cache"
	"DCFSuite/internal/model"
	"DCFSuite/internal/notifier"
	"DCFSuite/internal/pipeline"
	"DCFSuite/internal/watchlist"
)

// Valuer runs valuations and cost of capital estimates.
type Valuer interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Report, error)
	CostOfCapital(ctx context.Context, req pipeline.CapitalRequest) (*model.CapitalReport, error)
}

// RequestFunc builds the default request for a ticker.
type RequestFunc func(ticker string) (pipeline.Request, error)

// Scheduler manages cron tasks and operator commands.
type Scheduler struct {
	Cron      *cron.Cron
	Valuer    Valuer
	Requests  RequestFunc
	Watchlist *watchlist.Manager
	Notifier  notifier.Sender // nil disables notifications
	Cache     cache.Store
	Ctx       context.Context
	log       zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, v Valuer, requests RequestFunc, wl *watchlist.Manager, n notifier.Sender, store cache.Store, log zerolog.Logger) *Scheduler {
	if store == nil {
		store = cache.NewNoopStore()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Valuer:    v,
		Requests:  requests,
		Watchlist: wl,
		Notifier:  n,
		Cache:     store,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the watchlist revaluation and cache maintenance tasks.
func (s *Scheduler) RegisterAll(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, func() { s.watchTask() }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	// Hourly purge of expired market data.
	if _, err := s.Cron.AddFunc("0 0 * * * *", s.purgeCache); err != nil {
		return fmt.Errorf("register cache purge: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunWatchNow revalues the watchlist immediately.
func (s *Scheduler) RunWatchNow() []notifier.WatchResult {
	return s.watchTask()
}

func (s *Scheduler) watchTask() []notifier.WatchResult {
	tickers := s.Watchlist.Tickers()
	s.log.Info().Int("tickers", len(tickers)).Msg("running watchlist revaluation")

	results := make([]notifier.WatchResult, 0, len(tickers))
	for _, ticker := range tickers {
		report, err := s.value(s.Ctx, ticker)
		if err != nil {
			s.log.Error().Err(err).Str("ticker", ticker).Msg("watch valuation failed")
		}
		results = append(results, notifier.WatchResult{Ticker: ticker, Report: report, Err: err})
	}
	s.trySend(notifier.FormatWatchSummary(results))
	return results
}

func (s *Scheduler) purgeCache() {
	n, err := s.Cache.DeleteExpired()
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired cache entries")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("purged expired cache entries")
	}
}

func (s *Scheduler) value(ctx context.Context, ticker string) (*model.Report, error) {
	req, err := s.Requests(ticker)
	if err != nil {
		return nil, err
	}
	return s.Valuer.Run(ctx, req)
}

const helpText = "Available commands:\n" +
	"• /value TICKER - DCF valuation\n" +
	"• /wacc TICKER - cost of capital\n" +
	"• /watch TICKER - add to watchlist\n" +
	"• /unwatch TICKER - remove from watchlist\n" +
	"• /list - show watchlist\n" +
	"• /run - revalue watchlist now"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	var arg string
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch cmd {
	case "/value", "/wacc", "/watch", "/unwatch":
		if arg == "" {
			return fmt.Sprintf("Usage: %s TICKER", cmd)
		}
	}

	switch cmd {
	case "/value":
		report, err := s.value(ctx, arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		return notifier.FormatValuationReport(report)
	case "/wacc":
		req, err := s.Requests(arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		report, err := s.Valuer.CostOfCapital(ctx, req.CapitalRequest)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		return notifier.FormatCapitalReport(report)
	case "/watch":
		added, err := s.Watchlist.Add(arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		if !added {
			return arg + " is already on the watchlist."
		}
		return "✅ Watching " + arg
	case "/unwatch":
		removed, err := s.Watchlist.Remove(arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		if !removed {
			return arg + " is not on the watchlist."
		}
		return "🗑 Stopped watching " + arg
	case "/list":
		return notifier.FormatWatchlist(s.Watchlist.Tickers())
	case "/run":
		s.watchTask()
		return ""
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.log.Debug().Msg("notifier disabled, dropping message")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
