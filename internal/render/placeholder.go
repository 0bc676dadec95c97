package render

import "time"

// Placeholder is a fixed illustrative dataset drawn when there is nothing
// real to show.
type Placeholder struct {
	Times []time.Time
	// OHLC per bar in open, high, low, close order.
	Bars   [][4]float64
	Layout string
}

// PlaceholderTitle titles every placeholder chart.
const PlaceholderTitle = "No data (placeholder chart)"

func dates(layout string, values ...string) []time.Time {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.Parse(layout, v)
		if err != nil {
			panic(err)
		}
		out[i] = t
	}
	return out
}

// StockPlaceholder is five daily bars around 100.
var StockPlaceholder = Placeholder{
	Times:  dates("2006-01-02", "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"),
	Layout: "2006-01-02",
	Bars: [][4]float64{
		{100, 103, 99, 102},
		{102, 104, 100, 101},
		{101, 103, 99, 102},
		{103, 105, 101, 102},
		{102, 104, 100, 103},
	},
}

// CryptoPlaceholder is five hourly bars around 30000.
var CryptoPlaceholder = Placeholder{
	Times:  dates("2006-01-02 15:04", "2024-01-01 00:00", "2024-01-01 01:00", "2024-01-01 02:00", "2024-01-01 03:00", "2024-01-01 04:00"),
	Layout: "01-02 15:04",
	Bars: [][4]float64{
		{30000, 30600, 29800, 30500},
		{30500, 30800, 30200, 30200},
		{30200, 30500, 30000, 30400},
		{30800, 31000, 30400, 30600},
		{30600, 30900, 30500, 30800},
	},
}
