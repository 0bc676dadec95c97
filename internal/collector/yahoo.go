package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"PriceBoard/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements EquityFetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps display ticker to Yahoo ticker
}

// NewYahooFetcher creates a Yahoo fetcher with a bounded timeout and optional proxy.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(ticker string) string {
	if mapped, ok := f.SymbolMap[ticker]; ok {
		return mapped
	}
	return ticker
}

// yahooChart is the response structure from the chart API. Quote series are
// decoded by name so the columns actually returned can be recorded.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []map[string][]null.Float `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchBars downloads candles for ticker over period at interval.
func (f *YahooFetcher) FetchBars(ctx context.Context, ticker, period, interval string) (model.Table, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)), url.QueryEscape(interval), url.QueryEscape(period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Table{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.Table{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Table{}, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if decodeErr == nil && chart.Chart.Error != nil {
		return model.Table{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Table{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if decodeErr != nil {
		return model.Table{}, fmt.Errorf("%w: yahoo decode: %v", ErrSchema, decodeErr)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return model.Table{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return model.Table{}, fmt.Errorf("%w: yahoo: no quote block", ErrSchema)
	}
	quote := make(map[string][]null.Float, len(result.Indicators.Quote[0]))
	for name, series := range result.Indicators.Quote[0] {
		quote[strings.ToLower(name)] = series
	}

	table := model.Table{}
	for _, col := range []string{model.ColumnOpen, model.ColumnHigh, model.ColumnLow, model.ColumnClose, model.ColumnVolume} {
		series, ok := quote[col]
		if !ok {
			continue
		}
		if len(series) != len(result.Timestamp) {
			return model.Table{}, fmt.Errorf("%w: yahoo: %s has %d values for %d timestamps",
				ErrSchema, col, len(series), len(result.Timestamp))
		}
		table.Columns = append(table.Columns, col)
	}

	table.Bars = make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		table.Bars = append(table.Bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   pick(quote[model.ColumnOpen], i),
			High:   pick(quote[model.ColumnHigh], i),
			Low:    pick(quote[model.ColumnLow], i),
			Close:  pick(quote[model.ColumnClose], i),
			Volume: pick(quote[model.ColumnVolume], i),
		})
	}
	return table, nil
}

func pick(series []null.Float, i int) null.Float {
	if i >= len(series) {
		return null.Float{}
	}
	return normalized(series[i])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
