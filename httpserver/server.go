package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/russelltsherman/node-tweetawatt/config"
	"github.com/russelltsherman/node-tweetawatt/sink"
)

// Server serves health, metrics and the latest sensor readings
type Server struct {
	srv *http.Server
}

// New builds the gin router and HTTP server. readyFn reports whether the
// radio is connected; metricsHandler may be nil.
func New(cfg config.HTTPConfig, metricsHandler http.Handler, latest *sink.Latest, readyFn func() bool) *Server {
	return &Server{srv: &http.Server{
		Addr:         cfg.Addr,
		Handler:      Router(cfg.MetricsPath, metricsHandler, latest, readyFn),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// Router registers every route on a fresh engine.
func Router(metricsPath string, metricsHandler http.Handler, latest *sink.Latest, readyFn func() bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if readyFn == nil || readyFn() {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}

	api := r.Group("/api")
	api.GET("/sensors", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sensors": latest.Snapshot(),
			"errors":  latest.Errors(),
		})
	})
	api.GET("/sensors/:addr", func(c *gin.Context) {
		addr, err := parseAddr(c.Param("addr"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address must be a 16-bit number (decimal or 0x hex)"})
			return
		}
		s, ok := latest.Get(addr)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no reports from this address"})
			return
		}
		c.JSON(http.StatusOK, s)
	})
	return r
}

// parseAddr accepts "26", "0x1A" or "0X1a".
func parseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
