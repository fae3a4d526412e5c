// Package grpc exposes the standard gRPC health service. Status follows
// database reachability, so orchestrators can probe the server without
// going through the HTTP API.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" entry.
const ServiceName = "todokeeper"

// Pinger is satisfied by repomanager.RepositoryManager.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	db       Pinger
	interval time.Duration
	health   *health.Server
}

func NewGRPCServer(address string, l logging.Logger, db Pinger, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		db:       db,
		interval: interval,
		health:   health.NewServer(),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs the server on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
