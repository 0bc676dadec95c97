// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"PriceBoard/internal/clock"
	"PriceBoard/internal/dashboard"
)

//go:embed web/templates/*.html
var templates embed.FS

// Exchanges lists the crypto exchanges offered in the UI.
type Exchanges interface {
	Names() []string
	Default() string
}

// Config describes the server's dependencies.
type Config struct {
	Addr      string
	Board     *dashboard.Board
	Exchanges Exchanges
	Defaults  Params
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Server serves the dashboard page, chart pages, JSON panels and the
// auto-refresh event stream.
type Server struct {
	addr      string
	router    *gin.Engine
	board     *dashboard.Board
	exchanges Exchanges
	defaults  Params
	clock     clock.Clock
	logger    *zap.Logger
}

// NewServer builds the router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Board == nil {
		return nil, errors.New("server requires a board")
	}
	if cfg.Exchanges == nil {
		return nil, errors.New("server requires an exchange list")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{
		addr:      cfg.Addr,
		board:     cfg.Board,
		exchanges: cfg.Exchanges,
		defaults:  cfg.Defaults.withDefaults(cfg.Exchanges.Default()),
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))

	tmpl, err := template.New("pages").ParseFS(templates, "web/templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.handleIndex)
	router.GET("/chart/stock", s.handleStockChart)
	router.GET("/chart/crypto", s.handleCryptoChart)
	api := router.Group("/api")
	api.GET("/stock", s.handleStockPanel)
	api.GET("/crypto", s.handleCryptoPanel)
	api.GET("/exchanges", s.handleExchanges)
	api.GET("/stream", s.handleStream)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router = router
	return s, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("http server listening", zap.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("dur", time.Since(start)))
	}
}
