package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"PriceBoard/internal/model"
)

const warnEmptyPayload = "The provider returned no rows for this request."

// Collector adapts equity and crypto fetchers into FetchResults. It never
// returns an error: every provider problem becomes a Failure.
type Collector struct {
	Equity    EquityFetcher
	Exchanges *Registry
	Limit     int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(equity EquityFetcher, exchanges *Registry, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exchanges == nil {
		exchanges = NewRegistry()
	}
	return &Collector{
		Equity:    equity,
		Exchanges: exchanges,
		Limit:     DefaultCryptoLimit,
		Timeout:   DefaultTimeout,
		Logger:    logger,
	}
}

// Fetch dispatches req on its kind.
func (c *Collector) Fetch(ctx context.Context, req model.FetchRequest) model.FetchResult {
	switch req.Kind {
	case model.KindEquity:
		return c.FetchStock(ctx, req)
	case model.KindCrypto:
		return c.FetchCrypto(ctx, req)
	default:
		return model.Failed(model.ErrTransport, "unknown instrument kind %q", req.Kind)
	}
}

// FetchStock retrieves the equity series described by req.
func (c *Collector) FetchStock(ctx context.Context, req model.FetchRequest) model.FetchResult {
	if c.Equity == nil {
		return model.Failed(model.ErrTransport, "no equity provider configured")
	}
	return c.run(ctx, req, func(ctx context.Context) (model.Table, error) {
		return c.Equity.FetchBars(ctx, req.Instrument, req.Period, req.Interval)
	})
}

// FetchCrypto retrieves the 1m candles for the pair on req.Source.
func (c *Collector) FetchCrypto(ctx context.Context, req model.FetchRequest) model.FetchResult {
	fetcher, err := c.Exchanges.Get(req.Source)
	if err != nil {
		c.Logger.Warn("crypto fetch rejected", zap.String("request", req.String()), zap.Error(err))
		return model.Failed(model.ErrTransport, "%v", err)
	}
	interval := req.Interval
	if interval == "" {
		interval = CryptoInterval
	}
	return c.run(ctx, req, func(ctx context.Context) (model.Table, error) {
		return fetcher.FetchOHLCV(ctx, req.Instrument, interval, c.Limit)
	})
}

func (c *Collector) run(ctx context.Context, req model.FetchRequest, fetch func(context.Context) (model.Table, error)) (res model.FetchResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("provider panic", zap.String("request", req.String()), zap.Any("panic", r))
			res = model.Failed(model.ErrTransport, "provider panic: %v", r)
		}
	}()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	table, err := fetch(ctx)
	if err != nil {
		kind := model.ErrTransport
		if errors.Is(err, ErrSchema) {
			kind = model.ErrSchema
		}
		c.Logger.Warn("fetch failed",
			zap.String("request", req.String()),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return model.Failed(kind, "could not fetch %s: %v", req.Instrument, err)
	}

	table = Canonicalize(table)
	res = model.Succeeded(table)
	if table.Empty() {
		res.Warnings = append(res.Warnings, warnEmptyPayload)
	}
	c.Logger.Debug("fetched",
		zap.String("request", req.String()),
		zap.Int("bars", table.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// Canonicalize sorts bars by time and collapses duplicate timestamps,
// keeping the last occurrence.
func Canonicalize(t model.Table) model.Table {
	if len(t.Bars) == 0 {
		return model.Table{Columns: t.Columns}
	}
	bars := make([]model.Bar, len(t.Bars))
	copy(bars, t.Bars)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return model.Table{Bars: out, Columns: t.Columns}
}

// Describe renders a short human summary of a result for logs and digests.
func Describe(res model.FetchResult) string {
	switch {
	case res.Failed():
		return res.Failure.Error()
	case res.Table.Empty():
		return "empty"
	default:
		return fmt.Sprintf("%d bars", res.Table.Len())
	}
}
