package grpcapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type togglePinger struct {
	fail atomic.Bool
}

func (p *togglePinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("store down")
	}
	return nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialHealth(t *testing.T, s *Server) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthReporter_ReflectsPing(t *testing.T) {
	p := &togglePinger{}
	r := NewHealthReporter(p, time.Hour, silentLogger())
	client := dialHealth(t, NewServer(r, silentLogger()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus(), "not serving before first check")

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, r.Check(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	p.fail.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, r.Check(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealthReporter_StartStop(t *testing.T) {
	r := NewHealthReporter(&togglePinger{}, time.Hour, silentLogger())
	r.Start(context.Background())
	r.Stop()
	r.Stop()
}

func TestHealthReporter_StopWithoutStart(t *testing.T) {
	r := NewHealthReporter(&togglePinger{}, time.Hour, silentLogger())
	r.Stop()
}
