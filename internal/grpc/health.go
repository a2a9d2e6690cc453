package server

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

// SyncService is the health service name reflecting the poll pipeline.
const SyncService = "smartmeter.sync"

// HealthChecker implements the gRPC health checking protocol
type HealthChecker struct {
	grpc_health_v1.UnimplementedHealthServer
	mu     sync.RWMutex
	status map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
}

// NewHealthChecker registers the process ("") as serving and the sync
// pipeline as unknown until its first cycle finishes.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		status: map[string]grpc_health_v1.HealthCheckResponse_ServingStatus{
			"":          grpc_health_v1.HealthCheckResponse_SERVING,
			SyncService: grpc_health_v1.HealthCheckResponse_UNKNOWN,
		},
	}
}

func (h *HealthChecker) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if status, ok := h.status[req.Service]; ok {
		return &grpc_health_v1.HealthCheckResponse{
			Status: status,
		}, nil
	}

	return nil, status.Error(codes.NotFound, "unknown service")
}

func (h *HealthChecker) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watching is not supported")
}

// SetServingStatus sets the serving status of a service
func (h *HealthChecker) SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[service] = status
}

// ReportCycle updates SyncService from a finished poll cycle. Rejected
// credentials make the pipeline NOT_SERVING until a later cycle succeeds;
// other cycle errors leave the status as it was.
func (h *HealthChecker) ReportCycle(results map[string]models.PollResult, err error) {
	switch {
	case err == nil:
		h.SetServingStatus(SyncService, grpc_health_v1.HealthCheckResponse_SERVING)
	case errors.Is(err, api.ErrAuth):
		h.SetServingStatus(SyncService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
}
