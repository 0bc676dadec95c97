// Package dashboard runs the fetch, cache, select pipeline for one stock
// panel and one crypto panel.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/calculator"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/model"
	"PriceBoard/internal/render"
	"PriceBoard/internal/selector"
)

// User-facing info lines.
const (
	InfoPlaceholder      = "Could not fetch data; showing a placeholder chart."
	InfoPriceUnavailable = "Current price unavailable (price data validity)."
)

// Fetcher produces a result for a request without returning errors.
type Fetcher interface {
	Fetch(ctx context.Context, req model.FetchRequest) model.FetchResult
}

// StockParams are the raw equity controls.
type StockParams struct {
	Ticker   string `form:"ticker" json:"ticker"`
	Period   string `form:"period" json:"period"`
	Interval string `form:"interval" json:"interval"`
}

// CryptoParams are the raw crypto controls.
type CryptoParams struct {
	Pair     string `form:"pair" json:"pair"`
	Exchange string `form:"exchange" json:"exchange"`
}

// Panel is everything the page shows for one instrument.
type Panel struct {
	Kind       model.Kind         `json:"kind"`
	Title      string             `json:"title"`
	Request    model.FetchRequest `json:"request"`
	Decision   model.Decision     `json:"decision"`
	PriceLabel string             `json:"price_label"`
	Stats      *calculator.Stats  `json:"stats,omitempty"`
	Info       []string           `json:"info,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Placeholder returns the fixed dataset drawn for this panel's kind.
func (p Panel) Placeholder() render.Placeholder {
	if p.Kind == model.KindCrypto {
		return render.CryptoPlaceholder
	}
	return render.StockPlaceholder
}

// ChartOptions describes the candlestick chart for this panel.
func (p Panel) ChartOptions() render.ChartOptions {
	return render.ChartOptions{
		Title:       p.Title,
		Decision:    p.Decision,
		Placeholder: p.Placeholder(),
		TimeLayout:  render.TimeLayoutFor(p.Request.Interval),
	}
}

// View is one full render pass.
type View struct {
	Stock       Panel     `json:"stock"`
	Crypto      Panel     `json:"crypto"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Board wires the pipeline stages together.
type Board struct {
	Fetcher     Fetcher
	Cache       *cache.Cache
	StockSource string
	StockTTL    time.Duration
	CryptoTTL   time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewBoard creates a Board with the default TTLs.
func NewBoard(fetcher Fetcher, c *cache.Cache, stockSource string, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		Fetcher:     fetcher,
		Cache:       c,
		StockSource: stockSource,
		StockTTL:    cache.DefaultStockTTL,
		CryptoTTL:   cache.DefaultCryptoTTL,
		Logger:      logger,
		Now:         time.Now,
	}
}

// StockPanel validates p, resolves period/interval conflicts and runs the
// pipeline. Only invalid input returns an error.
func (b *Board) StockPanel(ctx context.Context, p StockParams) (Panel, error) {
	q, err := collector.ParseStockQuery(p.Ticker, p.Period, p.Interval)
	if err != nil {
		return Panel{}, err
	}
	q, warnings := q.Normalize()
	req := q.Request(b.StockSource)

	panel := b.run(ctx, req, b.StockTTL)
	panel.Title = fmt.Sprintf("%s (%s, %s)", q.Ticker, q.Period, q.Interval)
	panel.Warnings = append(warnings, panel.Warnings...)
	return panel, nil
}

// CryptoPanel validates p and runs the pipeline.
func (b *Board) CryptoPanel(ctx context.Context, p CryptoParams) (Panel, error) {
	q, err := collector.ParseCryptoQuery(p.Pair, p.Exchange)
	if err != nil {
		return Panel{}, err
	}
	req := q.Request()

	panel := b.run(ctx, req, b.CryptoTTL)
	panel.Title = fmt.Sprintf("%s (%s)", q.Pair, q.Exchange)
	return panel, nil
}

// Render runs both panels concurrently.
func (b *Board) Render(ctx context.Context, stock StockParams, crypto CryptoParams) (View, error) {
	var v View
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		v.Stock, err = b.StockPanel(gctx, stock)
		return err
	})
	g.Go(func() error {
		var err error
		v.Crypto, err = b.CryptoPanel(gctx, crypto)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}
	v.GeneratedAt = b.now()
	return v, nil
}

func (b *Board) run(ctx context.Context, req model.FetchRequest, ttl time.Duration) Panel {
	var res model.FetchResult
	if b.Cache != nil {
		res = b.Cache.GetOrFetch(ctx, req, ttl, b.Fetcher.Fetch)
	} else {
		res = b.Fetcher.Fetch(ctx, req)
	}
	d := selector.Select(res)

	panel := Panel{
		Kind:       req.Kind,
		Request:    req,
		Decision:   d,
		PriceLabel: render.FormatPrice(d),
		Warnings:   append([]string(nil), res.Warnings...),
		Error:      res.Message(),
	}
	if d.Real {
		if s, ok := calculator.Summarize(d.Table.Bars, d.LatestPrice); ok {
			panel.Stats = &s
		}
	} else {
		if d.Reason != model.ReasonNoValidPrice {
			panel.Info = append(panel.Info, InfoPlaceholder)
		}
		panel.Info = append(panel.Info, InfoPriceUnavailable)
	}

	b.Logger.Debug("panel rendered",
		zap.String("request", req.String()),
		zap.Bool("real", d.Real),
		zap.String("reason", d.Reason),
		zap.String("price", panel.PriceLabel))
	return panel
}

func (b *Board) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}
