package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"harness-sample-app/cmd/api/di"
	"harness-sample-app/internal/config"

	"go.uber.org/zap"
)

// Server struct holds all server dependencies
type Server struct {
	Config  *config.Config
	Logger  *zap.Logger
	HTTP    *http.Server
	Metrics *http.Server // nil unless METRICS_ENABLED
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP: SetupGinServer(
			c.UserHandler,
			c.SystemHandler,
			c.RateLimiter,
			c.Metrics,
			httpAddress(cfg),
			cfg.App.Environment,
			l,
		),
	}

	if c.Metrics != nil {
		s.Metrics = &http.Server{
			Addr:              ":" + cfg.Metrics.Port,
			Handler:           c.Metrics.Handler(),
			ReadHeaderTimeout: 2 * time.Second,
		}
	}

	return s
}

// Start listens on the configured ports and serves until Shutdown is called.
func (s *Server) Start() error {
	lc := net.ListenConfig{}

	if s.Metrics != nil {
		mlis, err := lc.Listen(context.Background(), "tcp", s.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics: %w", err)
		}
		s.Logger.Info("metrics server running", zap.String("address", mlis.Addr().String()))
		go func() {
			if err := s.Metrics.Serve(mlis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	lis, err := lc.Listen(context.Background(), "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

// Serve accepts API connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("HTTP server running", zap.String("address", lis.Addr().String()))

	if err := s.HTTP.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.Metrics != nil {
		if err := s.Metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
