package services

import (
	"context"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/models"
)

// FlowService fetches the server's multi-agent pipeline description for
// the flow viewer; rendering is entirely frontend-side.
type FlowService struct {
	ctx context.Context
	api *apiclient.Client
}

func NewFlowService(api *apiclient.Client) *FlowService {
	return &FlowService{api: api}
}

func (s *FlowService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Current returns the current node/edge graph.
func (s *FlowService) Current(ctx context.Context) (*models.FlowGraph, error) {
	return s.api.FlowGraph(ctx)
}
