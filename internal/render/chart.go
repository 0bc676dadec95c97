// Package render turns render decisions into price labels and candlestick
// charts.
package render

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/guregu/null/v5"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/model"
)

const (
	colorBull = "#26a69a"
	colorBear = "#ef5350"
	colorSMA  = "#f2a900"
)

// ChartOptions describes one candlestick chart.
type ChartOptions struct {
	Title       string
	Decision    model.Decision
	Placeholder Placeholder
	// TimeLayout formats x-axis labels for real data.
	TimeLayout string
	Height     string
}

// NewChart builds the candlestick chart for opt. Real data gets an SMA
// overlay and a subtitle with the session range; placeholders draw the
// fixed dataset under PlaceholderTitle.
func NewChart(opt ChartOptions) *charts.Kline {
	height := opt.Height
	if height == "" {
		height = "420px"
	}
	title, subtitle := opt.Title, ""
	if !opt.Decision.Real {
		title = PlaceholderTitle
	} else if s, ok := calculator.Summarize(opt.Decision.Table.Bars, opt.Decision.LatestPrice); ok {
		subtitle = Subtitle(s)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: opt.Title,
			Width:     "100%",
			Height:    height,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(opt.Decision.Real), Right: "10"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)

	if !opt.Decision.Real {
		x, data := placeholderSeries(opt.Placeholder)
		kline.SetXAxis(x).AddSeries("Price", data)
		return kline
	}

	layout := opt.TimeLayout
	if layout == "" {
		layout = "01-02 15:04"
	}
	bars := opt.Decision.Table.Bars
	x := xAxis(bars, layout)
	kline.SetXAxis(x).AddSeries("Price", klineSeries(bars))

	if len(bars) >= calculator.DefaultSMAPeriod {
		sma := charts.NewLine()
		sma.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		sma.SetXAxis(x).AddSeries(
			fmt.Sprintf("SMA %d", calculator.DefaultSMAPeriod),
			lineSeries(calculator.SMASeries(bars, calculator.DefaultSMAPeriod)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorSMA, Width: 1.5}),
		)
		kline.Overlap(sma)
	}
	return kline
}

// WriteChart renders a standalone chart page to w.
func WriteChart(w io.Writer, opt ChartOptions) error {
	if err := NewChart(opt).Render(w); err != nil {
		return fmt.Errorf("render chart %q: %w", opt.Title, err)
	}
	return nil
}

// Subtitle formats the session statistics shown under a chart title.
func Subtitle(s calculator.Stats) string {
	out := fmt.Sprintf("High %s | Low %s | Range %.0f%% | RSI %.1f",
		FormatValue(s.High), FormatValue(s.Low), s.Position*100, s.RSI)
	if s.SMA > 0 {
		out += fmt.Sprintf(" | SMA%d %s", calculator.DefaultSMAPeriod, FormatValue(s.SMA))
	}
	return out
}

func xAxis(bars []model.Bar, layout string) []string {
	x := make([]string, len(bars))
	for i, b := range bars {
		x[i] = b.Time.UTC().Format(layout)
	}
	return x
}

func klineSeries(bars []model.Bar) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(bars))
	for _, b := range bars {
		data = append(data, opts.KlineData{Value: [4]any{value(b.Open), value(b.Close), value(b.Low), value(b.High)}})
	}
	return data
}

func placeholderSeries(p Placeholder) ([]string, []opts.KlineData) {
	x := make([]string, len(p.Times))
	for i, t := range p.Times {
		x[i] = t.Format(p.Layout)
	}
	data := make([]opts.KlineData, 0, len(p.Bars))
	for _, b := range p.Bars {
		// stored as OHLC, echarts wants open, close, low, high
		data = append(data, opts.KlineData{Value: [4]float64{b[0], b[3], b[2], b[1]}})
	}
	return x, data
}

func lineSeries(series []null.Float) []opts.LineData {
	line := make([]opts.LineData, len(series))
	for i, v := range series {
		line[i] = opts.LineData{Value: value(v)}
	}
	return line
}

// value returns nil for absent numbers so echarts leaves a gap.
func value(v null.Float) any {
	if !v.Valid {
		return nil
	}
	return math.Round(v.Float64*1e4) / 1e4
}

// TimeLayoutFor picks x-axis labels suited to an interval.
func TimeLayoutFor(interval string) string {
	switch interval {
	case "1d", "5d", "1wk", "3mo":
		return time.DateOnly
	default:
		return "01-02 15:04"
	}
}
