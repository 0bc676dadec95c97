package collector

import (
	"context"
	"errors"

	"PriceBoard/internal/model"
)

var (
	// ErrSchema marks upstream payloads that could not be mapped onto a table.
	ErrSchema = errors.New("unexpected payload")
	// ErrUnsupportedExchange is returned for exchange ids outside the registry.
	ErrUnsupportedExchange = errors.New("unsupported exchange")
)

// EquityFetcher retrieves stock candles for a ticker.
type EquityFetcher interface {
	FetchBars(ctx context.Context, ticker, period, interval string) (model.Table, error)
	Name() string
}

// CryptoFetcher retrieves candles for a trading pair on one exchange.
type CryptoFetcher interface {
	FetchOHLCV(ctx context.Context, pair, interval string, limit int) (model.Table, error)
	Name() string
}
