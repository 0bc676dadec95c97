package render

import (
	"github.com/dustin/go-humanize"

	"PriceBoard/internal/model"
)

// NotAvailable is shown when no price can be derived.
const NotAvailable = "N/A"

// FormatPrice renders the latest price as "$1,234.56", or NotAvailable for
// placeholders.
func FormatPrice(d model.Decision) string {
	if !d.Real {
		return NotAvailable
	}
	return FormatValue(d.LatestPrice)
}

// FormatValue renders v with a dollar sign, thousands separators and two
// decimals.
func FormatValue(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}
