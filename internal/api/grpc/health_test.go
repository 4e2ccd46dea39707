package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) PingContext(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestHealthServer_OverGRPC(t *testing.T) {
	pinger := &fakePinger{}
	hs := NewHealthServer(pinger)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = hs.Server().Serve(lis) }()
	t.Cleanup(hs.Shutdown)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	client := healthpb.NewHealthClient(conn)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hs.Check(ctx))
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	pinger.fail(errors.New("connection refused"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, hs.Check(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealthServer_WatchStopsOnCancel(t *testing.T) {
	hs := NewHealthServer(&fakePinger{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hs.Watch(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	<-done

	resp, err := hs.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
