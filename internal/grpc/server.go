// Package server exposes the sync service's gRPC surface: the standard health
// protocol, with the pipeline's status under SyncService, behind the request
// id, rate limiting, logging and metrics interceptors.
package server

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	middleware "github.com/tejusbharadwaj/wnsm-sync/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/wnsm-sync/internal/metrics"
)

// ServerConfig holds configuration options for the gRPC server
type ServerConfig struct {
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultServerConfig returns a ServerConfig with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		RateLimit:      5.0,
		RateLimitBurst: 10,
	}
}

// SetupServer builds the gRPC server with all middleware and registers health.
func SetupServer(health *HealthChecker, m *metrics.Metrics, logger *logrus.Logger, config ServerConfig, opts ...grpc.ServerOption) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.ContextMiddleware, // Add request ID first
		middleware.NewRateLimitingInterceptor(rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimitBurst)),
		middleware.NewLoggingInterceptor(logger),
	}
	if m != nil {
		interceptors = append(interceptors, middleware.NewMetricsInterceptor(m.Requests, m.Latency))
	}

	opts = append(opts, grpc.UnaryInterceptor(chainUnaryInterceptors(interceptors...)))
	srv := grpc.NewServer(opts...)
	grpc_health_v1.RegisterHealthServer(srv, health)
	return srv
}

// chainUnaryInterceptors creates a single interceptor from multiple interceptors
func chainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			next := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, next)
			}
		}
		return chain(ctx, req)
	}
}
