package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/nlgkit/subjectivity/pkg/auth"
)

// HealthServiceName is the name reported to the gRPC health service.
const HealthServiceName = "subjectivity-service"

// ServerOptions configures the gRPC server. Nil JWT disables authentication
// and nil Credentials serves plaintext.
type ServerOptions struct {
	Address     string
	JWT         *auth.JWTService
	Credentials credentials.TransportCredentials
	Reflection  bool
}

// Server wraps the gRPC server with subjectivity service handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the subjectivity service.
func NewServer(handler *SubjectivityServiceHandler, opts ServerOptions, logger *slog.Logger) *Server {
	interceptors := []grpc.UnaryServerInterceptor{
		recoveryInterceptor(logger),
		loggingInterceptor(logger),
	}

	if opts.JWT != nil {
		interceptors = append(interceptors,
			auth.UnaryAuthInterceptor(opts.JWT, []string{
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
			}),
			requireRoleFor(map[string][]string{
				MethodScore:           {auth.RoleAdmin, auth.RoleScorer},
				MethodAssessText:      {auth.RoleAdmin, auth.RoleScorer},
				MethodAssessBatch:     {auth.RoleAdmin, auth.RoleScorer},
				MethodGetAssessment:   {auth.RoleAdmin, auth.RoleScorer, auth.RoleReader},
				MethodListAssessments: {auth.RoleAdmin, auth.RoleScorer, auth.RoleReader},
			}),
		)
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if opts.Credentials != nil {
		serverOpts = append(serverOpts, grpc.Creds(opts.Credentials))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	RegisterSubjectivityServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		address:    opts.Address,
	}
}

// SetServing flips the health status reported for HealthServiceName.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(HealthServiceName, st)
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func requireRoleFor(methodRoles map[string][]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		roles, ok := methodRoles[info.FullMethod]
		if !ok {
			return handler(ctx, req)
		}
		return auth.RequireRole(roles...)(ctx, req, info, handler)
	}
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.DebugContext(ctx, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}

func recoveryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in grpc handler",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
