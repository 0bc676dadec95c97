package calculator

import (
	"PriceBoard/internal/model"
)

// Stats summarizes a charted table for the panel subtitle.
type Stats struct {
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Position float64 `json:"position"`
	SMA      float64 `json:"sma,omitempty"`
	RSI      float64 `json:"rsi"`
}

// Summarize computes the session range, the position of latest within it,
// the trailing SMA and the RSI. ok is false when no range can be computed.
func Summarize(bars []model.Bar, latest float64) (Stats, bool) {
	high, low, err := SessionRange(bars)
	if err != nil {
		return Stats{}, false
	}
	s := Stats{High: high, Low: low}
	if pos, err := RangePosition(latest, high, low); err == nil {
		s.Position = pos
	}
	if sma, err := CalculateSMA(extractCloses(bars), DefaultSMAPeriod); err == nil {
		s.SMA = sma
	}
	if rsi, err := CalculateRSI(bars, DefaultRSIPeriod); err == nil {
		s.RSI = rsi
	}
	return s, true
}
