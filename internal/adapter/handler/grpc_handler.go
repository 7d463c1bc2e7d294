package handler

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SessionServiceName is the health service name of the line protocol server.
const SessionServiceName = "storefront.Session"

// GRPCHandler exposes the standard gRPC health service. It reports
// NOT_SERVING until the stores are loaded and again once shutdown starts.
type GRPCHandler struct {
	health *health.Server
}

func NewGRPCHandler() *GRPCHandler {
	h := &GRPCHandler{health: health.NewServer()}
	h.SetServing(false)
	return h
}

func (h *GRPCHandler) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h.health)
}

func (h *GRPCHandler) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(SessionServiceName, status)
}
