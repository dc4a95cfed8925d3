package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gitpilot/internal/models"
)

// ErrDevicePending reports that the user has not finished authorizing on
// the verification page yet. Callers keep polling; it is never a failure.
var ErrDevicePending = errors.New("device authorization pending")

// AuthStatus reports whether the server considers this client
// authenticated and which handshake mode it has configured.
func (c *Client) AuthStatus(ctx context.Context) (*models.AuthMode, error) {
	var mode models.AuthMode
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

type authURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// AuthorizationURL fetches the OAuth authorization URL together with the
// state nonce the callback must echo.
func (c *Client) AuthorizationURL(ctx context.Context) (authURL, state string, err error) {
	var resp authURLResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/url", nil, &resp); err != nil {
		return "", "", err
	}
	if resp.AuthorizationURL == "" {
		return "", "", fmt.Errorf("server returned no authorization URL")
	}
	return resp.AuthorizationURL, resp.State, nil
}

type sessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	AccessToken   string             `json:"access_token"`
	User          models.UserProfile `json:"user"`
}

// ExchangeCode trades an OAuth callback code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*models.Session, error) {
	var resp sessionResponse
	payload := map[string]string{"code": code, "state": state}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/callback", payload, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("server returned no access token")
	}
	return &models.Session{AccessToken: resp.AccessToken, User: resp.User}, nil
}

// ValidateToken asks the server whether a token is usable and resolves
// its user profile. A false answer is reported as ok=false, not an error.
func (c *Client) ValidateToken(ctx context.Context, token string) (*models.UserProfile, bool, error) {
	var resp sessionResponse
	payload := map[string]string{"access_token": token}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/validate", payload, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Authenticated {
		return nil, false, nil
	}
	return &resp.User, true, nil
}

// RequestDeviceCode starts a device-flow attempt.
func (c *Client) RequestDeviceCode(ctx context.Context) (*models.DeviceAuthorization, error) {
	var auth models.DeviceAuthorization
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/device/code", nil, &auth); err != nil {
		return nil, err
	}
	if auth.DeviceCode == "" || auth.UserCode == "" {
		return nil, fmt.Errorf("incomplete device authorization response")
	}
	return &auth, nil
}

// PollDevice runs one device-flow poll cycle. A 202 (or a success with no
// token yet) maps to ErrDevicePending; any non-success status is terminal.
func (c *Client) PollDevice(ctx context.Context, deviceCode string) (*models.Session, error) {
	var resp sessionResponse
	payload := map[string]string{"device_code": deviceCode}
	status, err := c.do(ctx, http.MethodPost, "/api/auth/device/poll", payload, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusAccepted || resp.AccessToken == "" {
		return nil, ErrDevicePending
	}
	return &models.Session{AccessToken: resp.AccessToken, User: resp.User}, nil
}
