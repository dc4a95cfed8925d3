package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"gitpilot/internal/models"
)

// GetSettings fetches the server-held LLM configuration, including the
// setup_completed flag that gates the first-run wizard.
func (c *Client) GetSettings(ctx context.Context) (*models.LLMSettings, error) {
	var settings models.LLMSettings
	if _, err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveLLMSettings persists the full settings object. Sending the whole
// object keeps inactive providers' stored fields intact when the active
// provider changes.
func (c *Client) SaveLLMSettings(ctx context.Context, settings *models.LLMSettings) (*models.LLMSettings, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	var saved models.LLMSettings
	if _, err := c.do(ctx, http.MethodPut, "/api/settings/llm", settings, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

type modelsResponse struct {
	Models []string `json:"models"`
}

// ListProviderModels fetches the model identifiers available for a
// provider. Results are offered as a pickable shortcut only; the model
// field is never overwritten automatically.
func (c *Client) ListProviderModels(ctx context.Context, provider string) ([]string, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	q := url.Values{}
	q.Set("provider", provider)
	var resp modelsResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/settings/models?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}
