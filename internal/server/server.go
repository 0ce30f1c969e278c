package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexandrapadonou/tagStackoverflow/internal/config"
	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server/middleware"
)

type Server struct {
	httpServer *http.Server
	service    *inference.Service
	aggregator *monitor.Aggregator
	config     *config.Config
	logger     *slog.Logger
	version    string
	started    time.Time
}

// New wires the HTTP API. agg may be nil, in which case /status omits
// resource usage.
func New(cfg *config.Config, svc *inference.Service, agg *monitor.Aggregator, logger *slog.Logger, version string) *Server {
	s := &Server{
		service:    svc,
		aggregator: agg,
		config:     cfg,
		logger:     logger,
		version:    version,
		started:    time.Now(),
	}

	mux := s.setupRoutes()

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		mws = append(mws, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			PerIP:             rl.PerIP,
			Paths:             []string{"/predict"},
		}))
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           middleware.Chain(mux, mws...),
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return s
}

// Handler exposes the full middleware-wrapped API.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server starting",
		"addr", ln.Addr().String(),
	)
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return fmt.Errorf("serve %s: %w", ln.Addr(), err)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
