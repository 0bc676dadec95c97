package server

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/refresh"
)

// Params are the user controls carried in the query string.
type Params struct {
	dashboard.StockParams
	dashboard.CryptoParams
	AutoRefresh    bool `form:"auto" json:"auto"`
	RefreshSeconds int  `form:"refresh" json:"refresh"`
}

func (p Params) withDefaults(exchange string) Params {
	if p.Ticker == "" {
		p.Ticker = "AAPL"
	}
	if p.Period == "" {
		p.Period = "1d"
	}
	if p.Interval == "" {
		p.Interval = "1m"
	}
	if p.Pair == "" {
		p.Pair = "BTC/USDT"
	}
	if p.Exchange == "" {
		p.Exchange = exchange
	}
	if p.RefreshSeconds == 0 {
		p.RefreshSeconds = refresh.DefaultSeconds
	}
	p.RefreshSeconds = refresh.ClampInterval(p.RefreshSeconds)
	return p
}

// bind reads the query string over the server defaults.
func (s *Server) bind(c *gin.Context) (Params, error) {
	p := s.defaults
	// an unchecked box is absent from a submitted form
	if len(c.Request.URL.Query()) > 0 && c.Query("auto") == "" {
		p.AutoRefresh = false
	}
	if err := c.ShouldBindQuery(&p); err != nil {
		return Params{}, err
	}
	return p.withDefaults(s.exchanges.Default()), nil
}

// Query encodes p for chart and stream URLs.
func (p Params) Query() string {
	v := url.Values{}
	v.Set("ticker", p.Ticker)
	v.Set("period", p.Period)
	v.Set("interval", p.Interval)
	v.Set("pair", p.Pair)
	v.Set("exchange", p.Exchange)
	v.Set("refresh", strconv.Itoa(p.RefreshSeconds))
	if p.AutoRefresh {
		v.Set("auto", "true")
	}
	return v.Encode()
}
