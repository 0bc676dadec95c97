package calculator

import (
	"errors"

	"github.com/guregu/null/v5"

	"PriceBoard/internal/model"
)

// DefaultSMAPeriod is the overlay window on candlestick charts.
const DefaultSMAPeriod = 20

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns one value per bar: the average close of the window
// ending at that bar. A window shorter than period or holding an absent
// close yields an absent value.
func SMASeries(bars []model.Bar, period int) []null.Float {
	out := make([]null.Float, len(bars))
	if period <= 0 {
		return out
	}
	var (
		sum     float64
		missing int
	)
	for i, b := range bars {
		if b.Close.Valid {
			sum += b.Close.Float64
		} else {
			missing++
		}
		if i >= period {
			old := bars[i-period].Close
			if old.Valid {
				sum -= old.Float64
			} else {
				missing--
			}
		}
		if i >= period-1 && missing == 0 {
			out[i] = model.Price(sum / float64(period))
		}
	}
	return out
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close.Valid {
			closes = append(closes, b.Close.Float64)
		}
	}
	return closes
}
