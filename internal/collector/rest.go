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

// RESTFetcher implements EquityFetcher against a self-hosted bar gateway
// returning a JSON array of {timestamp, open, high, low, close, volume}.
// Field names are matched case-insensitively.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a gateway fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// FetchBars requests /api/v1/bars for ticker, period and interval.
func (f *RESTFetcher) FetchBars(ctx context.Context, ticker, period, interval string) (model.Table, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("period", period)
	q.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Table{}, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.Table{}, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Table{}, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var rows []map[string]null.Float
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return model.Table{}, fmt.Errorf("%w: decode bars: %v", ErrSchema, err)
	}
	return restTable(rows)
}

func restTable(rows []map[string]null.Float) (model.Table, error) {
	table := model.Table{Bars: make([]model.Bar, 0, len(rows))}
	seen := map[string]bool{}
	for i, raw := range rows {
		row := make(map[string]null.Float, len(raw))
		for k, v := range raw {
			k = strings.ToLower(k)
			row[k] = v
			seen[k] = true
		}
		ts, ok := row["timestamp"]
		if !ok || !ts.Valid {
			return model.Table{}, fmt.Errorf("%w: bar %d has no timestamp", ErrSchema, i)
		}
		table.Bars = append(table.Bars, model.Bar{
			Time:   time.Unix(int64(ts.Float64), 0).UTC(),
			Open:   normalized(row[model.ColumnOpen]),
			High:   normalized(row[model.ColumnHigh]),
			Low:    normalized(row[model.ColumnLow]),
			Close:  normalized(row[model.ColumnClose]),
			Volume: normalized(row[model.ColumnVolume]),
		})
	}
	for _, col := range []string{model.ColumnOpen, model.ColumnHigh, model.ColumnLow, model.ColumnClose, model.ColumnVolume} {
		if seen[col] {
			table.Columns = append(table.Columns, col)
		}
	}
	return table, nil
}
