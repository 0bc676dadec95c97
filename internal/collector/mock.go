package collector

import (
	"context"
	"sync/atomic"
	"time"

	"PriceBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It satisfies both EquityFetcher and CryptoFetcher.
type MockFetcher struct {
	ID    string
	Price float64
	Bars  []model.Bar
	Err   error
	Now   func() time.Time

	calls atomic.Int64
}

// Calls returns how many fetches reached the mock.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) Name() string {
	if m.ID == "" {
		return "mock"
	}
	return m.ID
}

func (m *MockFetcher) FetchBars(_ context.Context, _, _, _ string) (model.Table, error) {
	return m.table(20)
}

func (m *MockFetcher) FetchOHLCV(_ context.Context, _, _ string, limit int) (model.Table, error) {
	return m.table(limit)
}

func (m *MockFetcher) table(count int) (model.Table, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return model.Table{}, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, count, m.now())
	}
	return model.Table{Bars: bars, Columns: exchangeColumns()}, nil
}

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func generateMockBars(basePrice float64, count int, now time.Time) []model.Bar {
	if count <= 0 {
		count = 20
	}
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   now.Add(-time.Duration(count-i) * time.Minute).Truncate(time.Minute),
			Open:   model.Price(p * 0.999),
			High:   model.Price(p * 1.005),
			Low:    model.Price(p * 0.995),
			Close:  model.Price(p),
			Volume: model.Price(1000000),
		}
	}
	return bars
}
