package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const binanceKlines = `[
 [1704067200000,"42000.10","42100.00","41950.00","42050.50","12.5",1704067259999,"525000.0",100,"6.0","250000.0","0"],
 [1704067260000,"42050.50","42080.00","42000.00","abc","8.1",1704067319999,"340000.0",80,"4.0","170000.0","0"]
]`

func TestBinanceFetcher_FetchOHLCV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(binanceKlines))
	}))
	defer srv.Close()

	f := NewBinanceFetcher(BinanceConfig{SpotBaseURL: srv.URL, Timeout: time.Second})
	assert.Equal(t, "binance", f.Name())

	table, err := f.FetchOHLCV(context.Background(), "btc/usdt", "1m", 500)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, time.UnixMilli(1704067200000).UTC(), table.Bars[0].Time)
	assert.Equal(t, 42050.5, table.Bars[0].Close.Float64)
	assert.False(t, table.Bars[1].Close.Valid, "unparsable close is absent")
	assert.True(t, table.HasColumn("close"))
}

func TestBinanceFuturesFetcher_FetchOHLCV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(binanceKlines))
	}))
	defer srv.Close()

	f := NewBinanceFuturesFetcher(BinanceConfig{FuturesBaseURL: srv.URL, Timeout: time.Second})
	assert.Equal(t, "binanceusdm", f.Name())

	table, err := f.FetchOHLCV(context.Background(), "ETH_USDT", "1m", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestBinanceFetcher_InvalidPair(t *testing.T) {
	f := NewBinanceFetcher(BinanceConfig{SpotBaseURL: "http://127.0.0.1:1"})
	_, err := f.FetchOHLCV(context.Background(), "", "1m", 10)
	assert.ErrorIs(t, err, ErrInvalidPair)
}

func TestGateFetcher_FetchOHLCV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/spot/candlesticks", r.URL.Path)
		assert.Equal(t, "BTC_USDT", r.URL.Query().Get("currency_pair"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			["1704067260","340000.0","42060.0","42080.0","42000.0","42050.5","8.1","true"],
			["1704067200","525000.0","42050.5","42100.0","41950.0","42000.1","12.5","true"]
		]`))
	}))
	defer srv.Close()

	f := NewGateFetcher(GateConfig{BaseURL: srv.URL + "/api/v4", Timeout: time.Second})
	assert.Equal(t, "gate", f.Name())

	table, err := f.FetchOHLCV(context.Background(), "BTCUSDT", "1m", 2)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, time.Unix(1704067260, 0).UTC(), table.Bars[0].Time)
	assert.Equal(t, 42000.1, table.Bars[1].Open.Float64)
	assert.Equal(t, 42050.5, table.Bars[1].Close.Float64)
	assert.Equal(t, 12.5, table.Bars[1].Volume.Float64)
}

func TestGateTable_ShortRow(t *testing.T) {
	_, err := gateTable([][]string{{"1704067200", "1", "2"}})
	assert.True(t, errors.Is(err, ErrSchema))

	_, err = gateTable([][]string{{"x", "1", "2", "3", "4", "5"}})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&MockFetcher{ID: "gate"}, &MockFetcher{ID: "binance"}, &MockFetcher{ID: "binanceusdm"})
	assert.Equal(t, []string{"binance", "binanceusdm", "gate"}, r.Names())
	assert.Equal(t, "binance", r.Default())

	f, err := r.Get("gate")
	require.NoError(t, err)
	assert.Equal(t, "gate", f.Name())

	_, err = r.Get("kraken")
	assert.ErrorIs(t, err, ErrUnsupportedExchange)

	assert.Equal(t, "", NewRegistry().Default())
	assert.Equal(t, "gate", NewRegistry(&MockFetcher{ID: "gate"}).Default())
}
