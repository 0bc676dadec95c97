package calculator

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/model"
)

func closes(vals ...float64) []model.Bar {
	bars := make([]model.Bar, len(vals))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range vals {
		bars[i] = model.Bar{
			Time:  start.Add(time.Duration(i) * time.Minute),
			High:  null.FloatFrom(v + 1),
			Low:   null.FloatFrom(v - 1),
			Close: null.FloatFrom(v),
		}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, sma)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestSMASeries(t *testing.T) {
	bars := closes(1, 2, 3, 4, 5)
	bars[3].Close = null.Float{}

	out := SMASeries(bars, 2)
	require.Len(t, out, 5)
	assert.False(t, out[0].Valid)
	assert.Equal(t, 1.5, out[1].Float64)
	assert.Equal(t, 2.5, out[2].Float64)
	assert.False(t, out[3].Valid)
	assert.False(t, out[4].Valid)

	assert.Len(t, SMASeries(bars, 0), 5)
}

func TestSessionRange(t *testing.T) {
	bars := closes(10, 12, 8)
	bars[1].High = null.Float{}
	high, low, err := SessionRange(bars)
	require.NoError(t, err)
	assert.Equal(t, 11.0, high)
	assert.Equal(t, 7.0, low)

	_, _, err = SessionRange(nil)
	assert.Error(t, err)
	_, _, err = SessionRange([]model.Bar{{Close: null.FloatFrom(1)}})
	assert.Error(t, err)
}

func TestRangePosition(t *testing.T) {
	pos, err := RangePosition(15, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	pos, _ = RangePosition(25, 20, 10)
	assert.Equal(t, 1.0, pos)
	pos, _ = RangePosition(5, 20, 10)
	assert.Equal(t, 0.0, pos)
	pos, _ = RangePosition(5, 10, 10)
	assert.Equal(t, 0.5, pos)

	_, err = RangePosition(5, 1, 10)
	assert.Error(t, err)
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(closes(rising...), 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	rsi, err = CalculateRSI(closes(1, 2, 3), 14)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi, "insufficient data")

	_, err = CalculateRSI(nil, 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s, ok := Summarize(closes(10, 11, 12), 12)
	require.True(t, ok)
	assert.Equal(t, 13.0, s.High)
	assert.Equal(t, 9.0, s.Low)
	assert.Equal(t, 0.75, s.Position)
	assert.Equal(t, 0.0, s.SMA, "fewer bars than the SMA window")
	assert.Equal(t, 50.0, s.RSI)

	_, ok = Summarize(nil, 1)
	assert.False(t, ok)
}
