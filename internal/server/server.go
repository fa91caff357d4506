// Package server exposes the board store to a local front end over HTTP,
// with a server-sent event stream that pushes the board after each change.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/jask/kanban/internal/board"
	"github.com/jask/kanban/internal/metrics"
	"github.com/jask/kanban/internal/modal"
	"github.com/jask/kanban/internal/notify"
)

// Server wires the store and modal flag to echo routes.
type Server struct {
	store       *board.Store
	modal       *modal.Flag
	boardEvents *notify.Broker
	modalEvents *notify.Broker
	log         *log.Logger
	e           *echo.Echo
	detach      []func()
}

// New registers all routes. collector may be nil, in which case /metrics is
// not served.
func New(store *board.Store, flag *modal.Flag, collector *metrics.Collector, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{
		store:       store,
		modal:       flag,
		boardEvents: notify.NewBroker(),
		modalEvents: notify.NewBroker(),
		log:         logger,
		e:           echo.New(),
	}
	s.detach = append(s.detach,
		store.AddListener(s.boardEvents.Publish),
		flag.AddListener(s.modalEvents.Publish),
	)

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"request_id": v.RequestID,
				"latency":    v.Latency,
			}).Debug("request")
			return nil
		},
	}))
	s.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost", "http://127.0.0.1"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.routes()
	if collector != nil {
		s.e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(collector.Registry, promhttp.HandlerOpts{})))
	}
	return s
}

// Echo returns the underlying instance, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.e }

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("board server listening")
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and detaches from the store and modal flag.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, fn := range s.detach {
		fn()
	}
	return s.e.Shutdown(ctx)
}
