package collector

import (
	"errors"
	"fmt"
	"strings"

	"PriceBoard/internal/model"
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrEmptyTicker     = errors.New("ticker is required")
	ErrInvalidPair     = errors.New("invalid trading pair")
)

// Periods accepted by the equity provider, in display order.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// Intervals accepted by the equity provider, in display order.
var Intervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "3mo"}

var intradayIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true,
	"30m": true, "60m": true, "90m": true, "1h": true,
}

// CryptoInterval is the fixed candle size for crypto pairs.
const CryptoInterval = "1m"

const (
	warnIntradayRequired = "A 1d period needs an intraday interval; switched the interval to 1m."
	warnMinuteTooLong    = "The 1m interval is only supported for the 1d period; choose 1h, 1d or longer."
)

// StockQuery is a validated equity request.
type StockQuery struct {
	Ticker   string
	Period   string
	Interval string
}

// ParseStockQuery validates user input against the enumerated period and
// interval sets. The ticker is uppercased.
func ParseStockQuery(ticker, period, interval string) (StockQuery, error) {
	q := StockQuery{
		Ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
		Period:   strings.TrimSpace(period),
		Interval: strings.TrimSpace(interval),
	}
	if q.Ticker == "" {
		return StockQuery{}, ErrEmptyTicker
	}
	if !contains(Periods, q.Period) {
		return StockQuery{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, q.Period)
	}
	if !contains(Intervals, q.Interval) {
		return StockQuery{}, fmt.Errorf("%w: %q", ErrInvalidInterval, q.Interval)
	}
	return q, nil
}

// Normalize resolves period/interval conflicts. It never fails: a 1d period
// with a daily-or-longer interval is coerced to 1m, and a 1m interval over a
// longer period only produces a warning.
func (q StockQuery) Normalize() (StockQuery, []string) {
	var warnings []string
	if q.Period == "1d" && !intradayIntervals[q.Interval] {
		q.Interval = "1m"
		warnings = append(warnings, warnIntradayRequired)
	}
	if q.Period != "1d" && q.Interval == "1m" {
		warnings = append(warnings, warnMinuteTooLong)
	}
	return q, warnings
}

// Request builds the cache/provider request for source.
func (q StockQuery) Request(source string) model.FetchRequest {
	return model.FetchRequest{
		Kind:       model.KindEquity,
		Source:     source,
		Instrument: q.Ticker,
		Period:     q.Period,
		Interval:   q.Interval,
	}
}

// CryptoQuery is a validated crypto request.
type CryptoQuery struct {
	Pair     string
	Exchange string
}

// ParseCryptoQuery normalizes the pair to BASE/QUOTE and lowercases the
// exchange id. Exchange support is checked by the Registry.
func ParseCryptoQuery(pair, exchange string) (CryptoQuery, error) {
	norm := NormalizePair(pair)
	if norm == "" {
		return CryptoQuery{}, fmt.Errorf("%w: %q", ErrInvalidPair, pair)
	}
	return CryptoQuery{
		Pair:     norm,
		Exchange: strings.ToLower(strings.TrimSpace(exchange)),
	}, nil
}

// Request builds the cache/provider request.
func (q CryptoQuery) Request() model.FetchRequest {
	return model.FetchRequest{
		Kind:       model.KindCrypto,
		Source:     q.Exchange,
		Instrument: q.Pair,
		Interval:   CryptoInterval,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
