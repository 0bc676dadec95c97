package model

import (
	"math"
	"time"

	"github.com/guregu/null/v5"
)

// Canonical column names shared by every provider.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// RequiredColumns are the fields a table must carry to be charted.
var RequiredColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose}

// Bar is a single candlestick record. An absent value has Valid == false.
type Bar struct {
	Time   time.Time  `json:"time"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Float `json:"volume"`
}

// Table is an ordered series of bars plus the columns the upstream returned.
type Table struct {
	Bars    []Bar    `json:"bars"`
	Columns []string `json:"columns"`
}

// Len returns the number of bars.
func (t Table) Len() int { return len(t.Bars) }

// Empty reports whether the table holds no bars.
func (t Table) Empty() bool { return len(t.Bars) == 0 }

// HasColumn reports whether the upstream supplied the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Price converts a parsed number into the absent-aware representation.
// NaN and infinities are treated as absent.
func Price(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// PricePtr is Price for nullable upstream values.
func PricePtr(v *float64) null.Float {
	if v == nil {
		return null.Float{}
	}
	return Price(*v)
}
