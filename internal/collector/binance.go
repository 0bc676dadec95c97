package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"

	"PriceBoard/internal/model"
)

const binanceMaxLimit = 1000

// BinanceConfig configures the spot and USDⓈ-M futures sources.
type BinanceConfig struct {
	SpotBaseURL    string
	FuturesBaseURL string
	ProxyURL       string
	Timeout        time.Duration
}

// BinanceFetcher reads spot klines.
type BinanceFetcher struct {
	client *binance.Client
}

// NewBinanceFetcher creates a spot kline fetcher.
func NewBinanceFetcher(cfg BinanceConfig) *BinanceFetcher {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(cfg.SpotBaseURL); base != "" {
		client.BaseURL = strings.TrimRight(base, "/")
	}
	client.HTTPClient = newHTTPClient(cfg.ProxyURL, cfg.Timeout)
	return &BinanceFetcher{client: client}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchOHLCV returns up to limit candles for pair.
func (f *BinanceFetcher) FetchOHLCV(ctx context.Context, pair, interval string, limit int) (model.Table, error) {
	symbol := binanceSymbol(pair)
	if symbol == "" {
		return model.Table{}, fmt.Errorf("%w: %q", ErrInvalidPair, pair)
	}
	kls, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(clampLimit(limit, binanceMaxLimit)).
		Do(ctx)
	if err != nil {
		return model.Table{}, fmt.Errorf("binance klines %s: %w", symbol, err)
	}
	table := model.Table{Columns: exchangeColumns(), Bars: make([]model.Bar, 0, len(kls))}
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		table.Bars = append(table.Bars, model.Bar{
			Time:   time.UnixMilli(kl.OpenTime).UTC(),
			Open:   parseDecimal(kl.Open),
			High:   parseDecimal(kl.High),
			Low:    parseDecimal(kl.Low),
			Close:  parseDecimal(kl.Close),
			Volume: parseDecimal(kl.Volume),
		})
	}
	return table, nil
}

// BinanceFuturesFetcher reads USDⓈ-M perpetual klines.
type BinanceFuturesFetcher struct {
	client *futures.Client
}

// NewBinanceFuturesFetcher creates a futures kline fetcher.
func NewBinanceFuturesFetcher(cfg BinanceConfig) *BinanceFuturesFetcher {
	client := futures.NewClient("", "")
	if base := strings.TrimSpace(cfg.FuturesBaseURL); base != "" {
		client.BaseURL = strings.TrimRight(base, "/")
	}
	client.HTTPClient = newHTTPClient(cfg.ProxyURL, cfg.Timeout)
	return &BinanceFuturesFetcher{client: client}
}

func (f *BinanceFuturesFetcher) Name() string { return "binanceusdm" }

// FetchOHLCV returns up to limit candles for pair.
func (f *BinanceFuturesFetcher) FetchOHLCV(ctx context.Context, pair, interval string, limit int) (model.Table, error) {
	symbol := binanceSymbol(pair)
	if symbol == "" {
		return model.Table{}, fmt.Errorf("%w: %q", ErrInvalidPair, pair)
	}
	kls, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(clampLimit(limit, 1500)).
		Do(ctx)
	if err != nil {
		return model.Table{}, fmt.Errorf("binance futures klines %s: %w", symbol, err)
	}
	table := model.Table{Columns: exchangeColumns(), Bars: make([]model.Bar, 0, len(kls))}
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		table.Bars = append(table.Bars, model.Bar{
			Time:   time.UnixMilli(kl.OpenTime).UTC(),
			Open:   parseDecimal(kl.Open),
			High:   parseDecimal(kl.High),
			Low:    parseDecimal(kl.Low),
			Close:  parseDecimal(kl.Close),
			Volume: parseDecimal(kl.Volume),
		})
	}
	return table, nil
}

// exchangeColumns lists the fields every exchange kline row carries.
func exchangeColumns() []string {
	return []string{model.ColumnOpen, model.ColumnHigh, model.ColumnLow, model.ColumnClose, model.ColumnVolume}
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return DefaultCryptoLimit
	}
	if limit > max {
		return max
	}
	return limit
}
