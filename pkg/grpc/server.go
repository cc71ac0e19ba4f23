// Package grpc runs the storefront's gRPC side server: the standard health
// service (reporting database reachability) and reflection, behind
// recovery, logging and metrics interceptors.
//
//	srv, err := grpc.Start(config.GRPCPort(), database.Ping)
//	defer grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor logs each call and counts it by method and code.
func observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	metrics.GRPCHandled.WithLabelValues(info.FullMethod, code.String()).Inc()
	logger.Debug("grpc: request", "method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds())
	return resp, err
}

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	checks []HealthCheck
}

func (h *healthServer) Check(ctx context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	for _, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Warn("grpc: health check failed", "error", err)
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: st}, nil
}

func (h *healthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	resp, _ := h.Check(stream.Context(), req)
	return stream.Send(resp)
}

// NewServer builds the server without listening.
func NewServer(checks ...HealthCheck) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(4<<20),
		grpc.MaxSendMsgSize(4<<20),
	)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{checks: checks})
	reflection.Register(srv)
	return srv
}

// Start listens on port and serves in the background.
func Start(port string, checks ...HealthCheck) (*grpc.Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	srv := NewServer(checks...)
	logger.Info("grpc: listening", "addr", addr)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	return srv, nil
}

// Stop waits for in-flight calls and shuts srv down.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("grpc: shutting down")
	srv.GracefulStop()
}
