// Package scheduler runs the watchlist digest on a cron schedule and answers
// chat commands with live panels.
package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/notifier"
)

const sendRetries = 3

// Notifier delivers a formatted message.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Exchanges lists the supported crypto exchanges.
type Exchanges interface {
	Names() []string
	Default() string
}

// Watchlist is what the digest reports on.
type Watchlist struct {
	Stocks   []string
	Period   string
	Interval string
	Cryptos  []dashboard.CryptoParams
}

// Scheduler manages the digest cron job and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Board     *dashboard.Board
	Notifier  Notifier
	Exchanges Exchanges
	Watchlist Watchlist
	Logger    *zap.Logger
	Ctx       context.Context
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, board *dashboard.Board, n Notifier, exchanges Exchanges, wl Watchlist, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if wl.Period == "" {
		wl.Period = "1d"
	}
	if wl.Interval == "" {
		wl.Interval = "1m"
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Board:     board,
		Notifier:  n,
		Exchanges: exchanges,
		Watchlist: wl,
		Logger:    logger,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterDigest schedules the digest with a six-field cron expression. An empty
// expression leaves the digest disabled.
func (s *Scheduler) RegisterDigest(expr string) error {
	if strings.TrimSpace(expr) == "" {
		s.Logger.Info("digest disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(expr, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	s.Logger.Info("digest scheduled", zap.String("cron", expr))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunDigestNow executes the digest immediately.
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.Logger.Info("running digest")
	s.trySend(s.Digest(s.Ctx))
}

// Digest renders every watchlist entry and formats the result.
func (s *Scheduler) Digest(ctx context.Context) string {
	var panels []dashboard.Panel
	var problems []string

	for _, ticker := range s.Watchlist.Stocks {
		p, err := s.Board.StockPanel(ctx, dashboard.StockParams{
			Ticker:   ticker,
			Period:   s.Watchlist.Period,
			Interval: s.Watchlist.Interval,
		})
		if err != nil {
			s.Logger.Warn("digest stock skipped", zap.String("ticker", ticker), zap.Error(err))
			problems = append(problems, fmt.Sprintf("%s: %v", ticker, err))
			continue
		}
		panels = append(panels, p)
	}
	for _, c := range s.Watchlist.Cryptos {
		if c.Exchange == "" {
			c.Exchange = s.defaultExchange()
		}
		p, err := s.Board.CryptoPanel(ctx, c)
		if err != nil {
			s.Logger.Warn("digest crypto skipped", zap.String("pair", c.Pair), zap.Error(err))
			problems = append(problems, fmt.Sprintf("%s: %v", c.Pair, err))
			continue
		}
		panels = append(panels, p)
	}
	return notifier.FormatDigest(s.now(), panels, problems)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd, args := notifier.ParseCommand(command)
	switch cmd {
	case "/price":
		if len(args) == 0 {
			return "Usage: /price TICKER [PERIOD] [INTERVAL]"
		}
		p := dashboard.StockParams{Ticker: args[0], Period: s.Watchlist.Period, Interval: s.Watchlist.Interval}
		if len(args) > 1 {
			p.Period = args[1]
		}
		if len(args) > 2 {
			p.Interval = args[2]
		}
		panel, err := s.Board.StockPanel(ctx, p)
		if err != nil {
			return "❌ " + html.EscapeString(err.Error())
		}
		return notifier.FormatPanel(panel)
	case "/crypto":
		if len(args) == 0 {
			return "Usage: /crypto PAIR [EXCHANGE]"
		}
		p := dashboard.CryptoParams{Pair: args[0], Exchange: s.defaultExchange()}
		if len(args) > 1 {
			p.Exchange = args[1]
		}
		panel, err := s.Board.CryptoPanel(ctx, p)
		if err != nil {
			return "❌ " + html.EscapeString(err.Error())
		}
		return notifier.FormatPanel(panel)
	case "/digest":
		return s.Digest(ctx)
	case "/exchanges":
		if s.Exchanges == nil {
			return "No exchanges configured."
		}
		return "Exchanges: " + strings.Join(s.Exchanges.Names(), ", ")
	default:
		return "Commands:\n• /price TICKER [PERIOD] [INTERVAL]\n• /crypto PAIR [EXCHANGE]\n• /digest\n• /exchanges"
	}
}

func (s *Scheduler) defaultExchange() string {
	if s.Exchanges == nil {
		return ""
	}
	return s.Exchanges.Default()
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
