package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/model"
)

func TestParseStockQuery(t *testing.T) {
	q, err := ParseStockQuery("  aapl ", "1d", "1m")
	require.NoError(t, err)
	assert.Equal(t, StockQuery{Ticker: "AAPL", Period: "1d", Interval: "1m"}, q)

	_, err = ParseStockQuery("", "1d", "1m")
	assert.ErrorIs(t, err, ErrEmptyTicker)
	_, err = ParseStockQuery("AAPL", "2d", "1m")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = ParseStockQuery("AAPL", "1d", "7m")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestStockQuery_Normalize(t *testing.T) {
	tests := []struct {
		period, interval string
		wantInterval     string
		wantWarnings     int
	}{
		{"1d", "1m", "1m", 0},
		{"1d", "5m", "5m", 0},
		{"1d", "1d", "1m", 1},
		{"1d", "1wk", "1m", 1},
		{"5d", "1m", "1m", 1},
		{"1mo", "1h", "1h", 0},
		{"1y", "1d", "1d", 0},
	}
	for _, tt := range tests {
		t.Run(tt.period+"/"+tt.interval, func(t *testing.T) {
			q, warnings := StockQuery{Ticker: "AAPL", Period: tt.period, Interval: tt.interval}.Normalize()
			assert.Equal(t, tt.period, q.Period)
			assert.Equal(t, tt.wantInterval, q.Interval)
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}

func TestStockQuery_RequestKeyUsesCoercedInterval(t *testing.T) {
	q, _ := StockQuery{Ticker: "AAPL", Period: "1d", Interval: "1d"}.Normalize()
	req := q.Request("yahoo")
	assert.Equal(t, model.KindEquity, req.Kind)
	assert.Equal(t, "equity:yahoo:AAPL:1d:1m", req.Key())
}

func TestParseCryptoQuery(t *testing.T) {
	q, err := ParseCryptoQuery("btcusdt", " Binance ")
	require.NoError(t, err)
	assert.Equal(t, CryptoQuery{Pair: "BTC/USDT", Exchange: "binance"}, q)

	req := q.Request()
	assert.Equal(t, model.KindCrypto, req.Kind)
	assert.Equal(t, "1m", req.Interval)
	assert.Equal(t, "crypto:binance:BTC/USDT::1m", req.Key())

	_, err = ParseCryptoQuery("???", "binance")
	assert.ErrorIs(t, err, ErrInvalidPair)
}

func TestNormalizePair(t *testing.T) {
	tests := map[string]string{
		"BTCUSDT":       "BTC/USDT",
		"btc/usdt":      "BTC/USDT",
		"BTC_USDT":      "BTC/USDT",
		"eth-btc":       "ETH/BTC",
		"BTC/USDT:USDT": "BTC/USDT",
		"SOLFDUSD":      "SOL/FDUSD",
		"USDT":          "",
		"/USDT":         "",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePair(in), in)
	}
	assert.Equal(t, "BTCUSDT", binanceSymbol("btc/usdt"))
	assert.Equal(t, "BTC_USDT", gateSymbol("BTCUSDT"))
}
