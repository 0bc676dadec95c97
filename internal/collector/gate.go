package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/antihax/optional"
	gateapi "github.com/gateio/gateapi-go/v7"

	"PriceBoard/internal/model"
)

const (
	defaultGateREST = "https://api.gateio.ws/api/v4"
	gateMaxLimit    = 1000
)

// GateConfig configures the Gate spot source.
type GateConfig struct {
	BaseURL  string
	ProxyURL string
	Timeout  time.Duration
}

// GateFetcher reads Gate spot candlesticks.
type GateFetcher struct {
	rest *gateapi.APIClient
}

// NewGateFetcher creates a spot candlestick fetcher.
func NewGateFetcher(cfg GateConfig) *GateFetcher {
	conf := gateapi.NewConfiguration()
	conf.BasePath = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if conf.BasePath == "" {
		conf.BasePath = defaultGateREST
	}
	conf.HTTPClient = newHTTPClient(cfg.ProxyURL, cfg.Timeout)
	return &GateFetcher{rest: gateapi.NewAPIClient(conf)}
}

func (f *GateFetcher) Name() string { return "gate" }

// FetchOHLCV returns up to limit candles for pair. Gate rows are
// [time, quote volume, close, high, low, open, base volume, closed].
func (f *GateFetcher) FetchOHLCV(ctx context.Context, pair, interval string, limit int) (model.Table, error) {
	symbol := gateSymbol(pair)
	if symbol == "" {
		return model.Table{}, fmt.Errorf("%w: %q", ErrInvalidPair, pair)
	}
	opts := &gateapi.ListCandlesticksOpts{
		Limit:    optional.NewInt32(int32(clampLimit(limit, gateMaxLimit))),
		Interval: optional.NewString(interval),
	}
	rows, _, err := f.rest.SpotApi.ListCandlesticks(ctx, symbol, opts)
	if err != nil {
		return model.Table{}, fmt.Errorf("gate candlesticks %s: %w", symbol, err)
	}
	return gateTable(rows)
}

func gateTable(rows [][]string) (model.Table, error) {
	table := model.Table{Columns: exchangeColumns(), Bars: make([]model.Bar, 0, len(rows))}
	for i, row := range rows {
		if len(row) < 6 {
			return model.Table{}, fmt.Errorf("%w: gate row %d has %d fields", ErrSchema, i, len(row))
		}
		sec, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return model.Table{}, fmt.Errorf("%w: gate row %d timestamp %q", ErrSchema, i, row[0])
		}
		bar := model.Bar{
			Time:  time.Unix(sec, 0).UTC(),
			Close: parseDecimal(row[2]),
			High:  parseDecimal(row[3]),
			Low:   parseDecimal(row[4]),
			Open:  parseDecimal(row[5]),
		}
		if len(row) > 6 {
			bar.Volume = parseDecimal(row[6])
		}
		table.Bars = append(table.Bars, bar)
	}
	return table, nil
}
