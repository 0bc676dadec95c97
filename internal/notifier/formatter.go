package notifier

import (
	"html"
	"strings"
	"time"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/render"
)

// FormatPanel formats one panel as a Telegram HTML snippet.
func FormatPanel(p dashboard.Panel) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</b>: ")
	b.WriteString(html.EscapeString(p.PriceLabel))
	if p.Stats != nil {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(render.Subtitle(*p.Stats)))
	}
	for _, w := range p.Warnings {
		b.WriteString("\n⚠️ ")
		b.WriteString(html.EscapeString(w))
	}
	if p.Error != "" {
		b.WriteString("\n❌ ")
		b.WriteString(html.EscapeString(p.Error))
	}
	return b.String()
}

// FormatDigest formats a watchlist digest. Lines in problems are inputs
// that could not be rendered at all.
func FormatDigest(at time.Time, panels []dashboard.Panel, problems []string) string {
	var b strings.Builder
	b.WriteString("📊 <b>PriceBoard digest</b> | ")
	b.WriteString(at.UTC().Format("2006-01-02 15:04"))
	b.WriteString(" UTC\n")
	if len(panels) == 0 && len(problems) == 0 {
		b.WriteString("\nWatchlist is empty.")
		return b.String()
	}
	for _, p := range panels {
		b.WriteString("\n")
		b.WriteString(FormatPanel(p))
		b.WriteString("\n")
	}
	for _, p := range problems {
		b.WriteString("\n❌ ")
		b.WriteString(html.EscapeString(p))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
