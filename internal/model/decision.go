package model

// Placeholder reasons.
const (
	ReasonNoData        = "no data"
	ReasonMissingFields = "missing required fields"
	ReasonNoValidPrice  = "no valid price"
)

// Decision tells the renderer whether to draw real data or a placeholder.
type Decision struct {
	Real        bool    `json:"real"`
	Table       Table   `json:"table"`
	LatestPrice float64 `json:"latest_price"`
	Reason      string  `json:"reason,omitempty"`
}

// RenderReal builds a decision carrying the table and its latest price.
func RenderReal(t Table, latest float64) Decision {
	return Decision{Real: true, Table: t, LatestPrice: latest}
}

// RenderPlaceholder builds a placeholder decision.
func RenderPlaceholder(reason string) Decision {
	return Decision{Reason: reason}
}
