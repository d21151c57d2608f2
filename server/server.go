package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/coastalsim/longshore/bmirpc"
)

// DefaultListen is the conventional deployment port of the model service.
const DefaultListen = ":55555"

// Config holds the server's listen configuration.
type Config struct {
	// Listen is the gRPC listen address; DefaultListen when empty.
	Listen string

	// MetricsListen is the address of the Prometheus metrics endpoint.
	// Empty disables the metrics listener.
	MetricsListen string

	// Metrics is the collector set served on MetricsListen.
	Metrics *Metrics

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server owns the gRPC server, the health service and the optional
// metrics listener for one model service.
type Server struct {
	cfg    Config
	grpc   *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// New assembles the gRPC server around a bound service.
func New(svc *Service, cfg Config) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	g := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(cfg.Logger)),
		grpc.ChainStreamInterceptor(StreamLoggingInterceptor(cfg.Logger)),
	)
	bmirpc.RegisterModelServiceServer(g, svc)

	h := health.NewServer()
	healthpb.RegisterHealthServer(g, h)

	return &Server{
		cfg:    cfg,
		grpc:   g,
		health: h,
		log:    cfg.Logger,
	}
}

// Serve binds the listeners and blocks until ctx is cancelled or a
// listener fails. On cancellation it stops gracefully, falling back to a
// hard stop after ten seconds.
func (s *Server) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Listen, err)
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(bmirpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("Serving model service", "listen", lis.Addr().String())
		serveErr <- s.grpc.Serve(lis)
	}()

	var metricsSrv *http.Server
	metricsErr := make(chan error, 1)
	if s.cfg.MetricsListen != "" && s.cfg.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.cfg.Metrics.Handler())
		metricsSrv = &http.Server{
			Addr:              s.cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			s.log.Info("Serving metrics", "listen", s.cfg.MetricsListen)
			metricsErr <- metricsSrv.ListenAndServe()
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		// Server exited without a shutdown request.
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case err := <-metricsErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: metrics serve: %w", err)
		}
		return nil
	}

	s.log.Info("Shutting down")
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(bmirpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}

	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		s.grpc.Stop()
	}

	<-serveErr
	return nil
}
