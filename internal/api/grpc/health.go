package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"vehicle-rental-desk/internal/api/grpc/interceptor"
	"vehicle-rental-desk/internal/logger"
)

// ServiceName is the health-check service name reported alongside the overall status.
const ServiceName = "vehicle_rental_desk.Booking"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes the standard gRPC health protocol backed by a storage ping.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	db     Pinger
}

func NewHealthServer(db Pinger) *HealthServer {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.Unary()),
		grpc.StreamInterceptor(interceptor.Stream()),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	return &HealthServer{server: s, health: h, db: db}
}

func (hs *HealthServer) Server() *grpc.Server {
	return hs.server
}

// Check pings storage once and publishes the resulting status.
func (hs *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := hs.db.PingContext(ctx); err != nil {
		logger.Warn("Storage ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.health.SetServingStatus("", st)
	hs.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch re-checks storage every interval until ctx is cancelled.
func (hs *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	hs.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING and stops the server gracefully.
func (hs *HealthServer) Shutdown() {
	hs.health.Shutdown()
	hs.server.GracefulStop()
}
