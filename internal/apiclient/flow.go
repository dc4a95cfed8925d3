package apiclient

import (
	"context"
	"net/http"

	"gitpilot/internal/models"
)

// FlowGraph fetches the current multi-agent pipeline description for the
// flow viewer.
func (c *Client) FlowGraph(ctx context.Context) (*models.FlowGraph, error) {
	var graph models.FlowGraph
	if _, err := c.do(ctx, http.MethodGet, "/api/flow/current", nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}
