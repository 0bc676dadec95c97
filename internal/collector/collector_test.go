package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PriceBoard/internal/model"
)

type panicFetcher struct{}

func (panicFetcher) Name() string { return "boom" }

func (panicFetcher) FetchOHLCV(context.Context, string, string, int) (model.Table, error) {
	panic("decoder exploded")
}

func bar(sec int64, close float64) model.Bar {
	return model.Bar{
		Time:  time.Unix(sec, 0).UTC(),
		Open:  model.Price(close),
		High:  model.Price(close),
		Low:   model.Price(close),
		Close: model.Price(close),
	}
}

func TestCollector_FetchStock(t *testing.T) {
	mock := &MockFetcher{Price: 100}
	c := NewCollector(mock, nil, zap.NewNop())

	res := c.Fetch(context.Background(), StockQuery{Ticker: "AAPL", Period: "5d", Interval: "1h"}.Request("mock"))
	require.False(t, res.Failed())
	assert.Equal(t, 20, res.Table.Len())
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, mock.Calls())
}

func TestCollector_FetchCrypto(t *testing.T) {
	mock := &MockFetcher{ID: "binance", Price: 42000}
	c := NewCollector(nil, NewRegistry(mock), zap.NewNop())
	c.Limit = 5

	res := c.FetchCrypto(context.Background(), CryptoQuery{Pair: "BTC/USDT", Exchange: "binance"}.Request())
	require.False(t, res.Failed())
	assert.Equal(t, 5, res.Table.Len())
}

func TestCollector_UnsupportedExchange(t *testing.T) {
	c := NewCollector(nil, NewRegistry(&MockFetcher{ID: "binance"}), zap.NewNop())

	res := c.Fetch(context.Background(), CryptoQuery{Pair: "BTC/USDT", Exchange: "kraken"}.Request())
	require.True(t, res.Failed())
	assert.Equal(t, model.ErrTransport, res.Failure.Kind)
	assert.Contains(t, res.Message(), "unsupported exchange")
}

func TestCollector_ErrorsBecomeFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind model.ErrorKind
	}{
		{"transport", errors.New("connection refused"), model.ErrTransport},
		{"schema", fmt.Errorf("%w: decode", ErrSchema), model.ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(&MockFetcher{Err: tt.err}, nil, zap.NewNop())
			res := c.FetchStock(context.Background(), StockQuery{Ticker: "AAPL", Period: "1d", Interval: "1m"}.Request("mock"))
			require.True(t, res.Failed())
			assert.Equal(t, tt.kind, res.Failure.Kind)
			assert.True(t, res.Table.Empty())
			assert.Contains(t, res.Message(), "AAPL")
		})
	}
}

func TestCollector_RecoversPanic(t *testing.T) {
	c := NewCollector(nil, NewRegistry(panicFetcher{}), zap.NewNop())

	var res model.FetchResult
	require.NotPanics(t, func() {
		res = c.FetchCrypto(context.Background(), model.FetchRequest{Kind: model.KindCrypto, Source: "boom", Instrument: "BTC/USDT"})
	})
	require.True(t, res.Failed())
	assert.Equal(t, model.ErrTransport, res.Failure.Kind)
}

func TestCollector_EmptyIsNotFailure(t *testing.T) {
	c := NewCollector(&MockFetcher{Bars: []model.Bar{}}, nil, zap.NewNop())

	res := c.FetchStock(context.Background(), StockQuery{Ticker: "AAPL", Period: "1d", Interval: "1m"}.Request("mock"))
	assert.False(t, res.Failed())
	assert.True(t, res.Empty())
	assert.Len(t, res.Warnings, 1)
}

func TestCollector_NoEquityProvider(t *testing.T) {
	c := NewCollector(nil, nil, nil)
	res := c.Fetch(context.Background(), model.FetchRequest{Kind: model.KindEquity, Instrument: "AAPL"})
	assert.True(t, res.Failed())

	res = c.Fetch(context.Background(), model.FetchRequest{Kind: "bond"})
	assert.True(t, res.Failed())
}

func TestCanonicalize(t *testing.T) {
	in := model.Table{
		Columns: []string{"open", "high", "low", "close"},
		Bars:    []model.Bar{bar(30, 3), bar(10, 1), bar(20, 2), bar(20, 2.5)},
	}
	out := Canonicalize(in)
	require.Equal(t, 3, out.Len())
	for i := 1; i < out.Len(); i++ {
		assert.True(t, out.Bars[i-1].Time.Before(out.Bars[i].Time))
	}
	assert.Equal(t, 2.5, out.Bars[1].Close.Float64, "last duplicate wins")
	assert.Equal(t, 3.0, in.Bars[0].Close.Float64, "input untouched")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "empty", Describe(model.Succeeded(model.Table{})))
	assert.Equal(t, "1 bars", Describe(model.Succeeded(model.Table{Bars: []model.Bar{bar(1, 1)}})))
	assert.Equal(t, "transport: down", Describe(model.Failed(model.ErrTransport, "down")))
}
