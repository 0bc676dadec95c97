package collector

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"PriceBoard/internal/model"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// parseDecimal turns an exchange decimal string into a price; anything that
// does not parse is absent.
func parseDecimal(v string) null.Float {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return null.Float{}
	}
	return model.Price(f)
}

// normalized drops NaN and infinities that slipped through a decoder.
func normalized(v null.Float) null.Float {
	if !v.Valid {
		return null.Float{}
	}
	return model.Price(v.Float64)
}
