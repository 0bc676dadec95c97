package calculator

import (
	"errors"
	"math"

	"PriceBoard/internal/model"
)

// SessionRange returns the highest high and lowest low over the bars,
// ignoring absent values.
func SessionRange(bars []model.Bar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High.Valid && b.High.Float64 > high {
			high = b.High.Float64
		}
		if b.Low.Valid && b.Low.Float64 < low {
			low = b.Low.Float64
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, errors.New("no valid high/low values")
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
