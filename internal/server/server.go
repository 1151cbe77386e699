// Package server exposes the operational HTTP surface: health, store
// statistics and Prometheus metrics. It is read-only; all writes go through
// the pipeline.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotemill/quotemill/internal/pipeline"
)

type Server struct {
	echo   *echo.Echo
	stats  pipeline.StatsStore
	logger *log.Logger
}

func New(stats pipeline.StatsStore, registry *prometheus.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	s := &Server{echo: e, stats: stats, logger: logger}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/api/stats", s.statsHandler)

	metricsHandler := promhttp.Handler()
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	return s
}

func (s *Server) statsHandler(c echo.Context) error {
	if s.stats == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store not configured")
	}
	stats, err := s.stats.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// Start blocks serving on addr until the listener fails or is closed.
func (s *Server) Start(addr string) error {
	s.logger.Printf("ops server listening on %s", addr)
	return s.echo.Start(addr)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }
