package server

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"PriceBoard/internal/collector"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/refresh"
	"PriceBoard/internal/render"
)

type indexPage struct {
	Params      Params
	View        dashboard.View
	Exchanges   []string
	Periods     []string
	Intervals   []string
	Query       template.URL
	MinRefresh  int
	MaxRefresh  int
	StepRefresh int
	Error       string
}

func (s *Server) handleIndex(c *gin.Context) {
	p, err := s.bind(c)
	page := indexPage{
		Exchanges:   s.exchanges.Names(),
		Periods:     collector.Periods,
		Intervals:   collector.Intervals,
		MinRefresh:  refresh.MinSeconds,
		MaxRefresh:  refresh.MaxSeconds,
		StepRefresh: refresh.StepSeconds,
	}
	if err != nil {
		page.Params = s.defaults
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}
	page.Params = p
	page.Query = template.URL(p.Query())

	view, err := s.board.Render(c.Request.Context(), p.StockParams, p.CryptoParams)
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}
	page.View = view
	c.HTML(http.StatusOK, "index.html", page)
}

func (s *Server) handleStockChart(c *gin.Context) {
	p, err := s.bind(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	panel, err := s.board.StockPanel(c.Request.Context(), p.StockParams)
	if err != nil {
		badRequest(c, err)
		return
	}
	s.writeChart(c, panel)
}

func (s *Server) handleCryptoChart(c *gin.Context) {
	p, err := s.bind(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	panel, err := s.board.CryptoPanel(c.Request.Context(), p.CryptoParams)
	if err != nil {
		badRequest(c, err)
		return
	}
	s.writeChart(c, panel)
}

func (s *Server) writeChart(c *gin.Context, panel dashboard.Panel) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.WriteChart(c.Writer, panel.ChartOptions()); err != nil {
		s.logger.Error("chart render failed", zap.String("title", panel.Title), zap.Error(err))
	}
}

func (s *Server) handleStockPanel(c *gin.Context) {
	p, err := s.bind(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	panel, err := s.board.StockPanel(c.Request.Context(), p.StockParams)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (s *Server) handleCryptoPanel(c *gin.Context) {
	p, err := s.bind(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	panel, err := s.board.CryptoPanel(c.Request.Context(), p.CryptoParams)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (s *Server) handleExchanges(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"exchanges": s.exchanges.Names(),
		"default":   s.exchanges.Default(),
	})
}

// handleStream pushes a "view" event per render pass. Each connection owns
// one refresh loop; disconnecting stops it. Without auto=true the stream
// carries a single view and ends.
func (s *Server) handleStream(c *gin.Context) {
	p, err := s.bind(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := validate(p); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	views := make(chan dashboard.View)
	errs := make(chan error, 1)
	loop := refresh.NewLoop(func(ctx context.Context) error {
		v, err := s.board.Render(ctx, p.StockParams, p.CryptoParams)
		if err != nil {
			select {
			case errs <- err:
			default:
			}
			return err
		}
		select {
		case views <- v:
		case <-ctx.Done():
		}
		return nil
	}, p.RefreshSeconds, s.clock, s.logger)
	loop.SetEnabled(p.AutoRefresh)

	go func() {
		defer close(views)
		_ = loop.Run(ctx)
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			loop.SetEnabled(false)
			return
		case err := <-errs:
			loop.SetEnabled(false)
			c.SSEvent("error", gin.H{"error": err.Error()})
			c.Writer.Flush()
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			c.SSEvent("view", streamView(v))
			c.Writer.Flush()
		}
	}
}

// streamEvent is the SSE payload: price labels and messages, without bars.
type streamEvent struct {
	Stock       streamPanel `json:"stock"`
	Crypto      streamPanel `json:"crypto"`
	GeneratedAt string      `json:"generated_at"`
}

type streamPanel struct {
	Title      string   `json:"title"`
	Real       bool     `json:"real"`
	Reason     string   `json:"reason,omitempty"`
	PriceLabel string   `json:"price_label"`
	Info       []string `json:"info,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func streamView(v dashboard.View) streamEvent {
	return streamEvent{
		Stock:       toStreamPanel(v.Stock),
		Crypto:      toStreamPanel(v.Crypto),
		GeneratedAt: v.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func toStreamPanel(p dashboard.Panel) streamPanel {
	return streamPanel{
		Title:      p.Title,
		Real:       p.Decision.Real,
		Reason:     p.Decision.Reason,
		PriceLabel: p.PriceLabel,
		Info:       p.Info,
		Warnings:   p.Warnings,
	}
}

func validate(p Params) error {
	if _, err := collector.ParseStockQuery(p.Ticker, p.Period, p.Interval); err != nil {
		return err
	}
	_, err := collector.ParseCryptoQuery(p.Pair, p.Exchange)
	return err
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
