package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gitpilot/internal/models"
)

type planRequest struct {
	RepoOwner string `json:"repo_owner"`
	RepoName  string `json:"repo_name"`
	Goal      string `json:"goal"`
}

// GeneratePlan asks the server for an ordered change plan addressing the
// stated goal. The response body is kept verbatim on the plan so
// execution can echo it exactly, unknown fields included.
func (c *Client) GeneratePlan(ctx context.Context, owner, name, goal string) (*models.Plan, error) {
	var raw json.RawMessage
	req := planRequest{RepoOwner: owner, RepoName: name, Goal: goal}
	if _, err := c.do(ctx, http.MethodPost, "/api/chat/plan", req, &raw); err != nil {
		return nil, err
	}

	var plan models.Plan
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &plan); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("server returned an empty plan")
	}
	plan.Raw = raw
	return &plan, nil
}

type executeRequest struct {
	RepoOwner string          `json:"repo_owner"`
	RepoName  string          `json:"repo_name"`
	Plan      json.RawMessage `json:"plan"`
}

// ExecutePlan submits an approved plan for execution. The plan must be
// the exact object previously returned by GeneratePlan; the server
// validates it unchanged, so the original encoding is sent whenever it
// is still attached.
func (c *Client) ExecutePlan(ctx context.Context, owner, name string, plan *models.Plan) (*models.ExecutionLog, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	body := plan.Raw
	if len(body) == 0 {
		encoded, err := json.Marshal(plan)
		if err != nil {
			return nil, fmt.Errorf("encode plan: %w", err)
		}
		body = encoded
	}
	var log models.ExecutionLog
	req := executeRequest{RepoOwner: owner, RepoName: name, Plan: body}
	if _, err := c.do(ctx, http.MethodPost, "/api/chat/execute", req, &log); err != nil {
		return nil, err
	}
	return &log, nil
}
