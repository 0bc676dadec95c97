// Package selector decides whether a fetch result can be charted.
package selector

import (
	"PriceBoard/internal/model"
)

// Select maps a fetch result to a render decision. The checks run in order:
// no data, missing OHLC columns, no valid close.
func Select(res model.FetchResult) model.Decision {
	if res.Empty() {
		return model.RenderPlaceholder(model.ReasonNoData)
	}
	for _, col := range model.RequiredColumns {
		if !res.Table.HasColumn(col) {
			return model.RenderPlaceholder(model.ReasonMissingFields)
		}
	}
	price, ok := LatestPrice(res.Table)
	if !ok {
		return model.RenderPlaceholder(model.ReasonNoValidPrice)
	}
	return model.RenderReal(res.Table, price)
}

// LatestPrice returns the close of the chronologically last bar whose close
// is valid. Bars are scanned by timestamp, not position.
func LatestPrice(t model.Table) (float64, bool) {
	var (
		found  bool
		latest model.Bar
	)
	for _, b := range t.Bars {
		if !b.Close.Valid {
			continue
		}
		if !found || b.Time.After(latest.Time) {
			latest = b
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return latest.Close.Float64, true
}
