// Package grpcapi serves the standard gRPC health service so load balancers
// and orchestrators can probe the attendance store.
package grpcapi

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the attendance API.
const ServiceName = "attendance.v1.Attendance"

// Pinger is satisfied by the attendance service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter pings the store on an interval and mirrors the result into
// a grpc health server, both for ServiceName and the overall ("") status.
type HealthReporter struct {
	pinger   Pinger
	health   *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHealthReporter(p Pinger, interval time.Duration, logger *slog.Logger) *HealthReporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthReporter{
		pinger:   p,
		health:   hs,
		interval: interval,
		timeout:  3 * time.Second,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Register adds the health service to srv.
func (r *HealthReporter) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, r.health)
}

// Check pings once and updates the serving status. It returns the status set.
func (r *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := r.pinger.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		r.logger.Warn("health check failed", "err", err)
	}
	r.health.SetServingStatus("", status)
	r.health.SetServingStatus(ServiceName, status)
	return status
}

func (r *HealthReporter) Start(ctx context.Context) {
	r.once.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		go r.loop(ctx)
	})
}

// Stop ends the loop and marks every service NOT_SERVING. Safe without Start.
func (r *HealthReporter) Stop() {
	r.once.Do(func() { close(r.done) })
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
	r.health.Shutdown()
}

func (r *HealthReporter) loop(ctx context.Context) {
	defer close(r.done)

	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Server is a gRPC server carrying only the health service.
type Server struct {
	srv      *grpc.Server
	reporter *HealthReporter
	logger   *slog.Logger
}

func NewServer(reporter *HealthReporter, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer(opts...)
	reporter.Register(srv)
	return &Server{srv: srv, reporter: reporter, logger: logger}
}

// Serve blocks until lis is closed or GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

func (s *Server) GracefulStop() {
	s.srv.GracefulStop()
}
