// Package apiclient is the typed HTTP client for the GitPilot server.
// Every call is JSON over HTTP against /api endpoints; the client only
// shapes requests and normalizes failures, it holds no workflow state.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a server-reported failure: a non-success HTTP status plus
// the server's verbatim message. Status 0 means the request never got a
// response (transport failure).
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// errorBody is the shape servers use for machine-readable failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Client talks to one GitPilot server. TokenSource, when set, supplies
// the bearer token attached to every request; it returns "" while no
// session exists.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	TokenSource func() string
}

// New validates the base URL and builds a client. Only http/https
// schemes are accepted.
func New(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}, nil
}

// BaseURL returns the server base URL this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one JSON round trip and returns the HTTP status. in == nil
// sends no body; out == nil (or an empty response body) skips decoding.
// Failures are normalized to three classes: transport error, non-2xx
// with a server message, malformed body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.TokenSource != nil {
		if token := c.TokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &APIError{Status: 0, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return 0, &APIError{Status: 0, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: serverMessage(data, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// serverMessage pulls the human-readable message out of an error body,
// falling back to the HTTP status text for bodies we can't read.
func serverMessage(data []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		for _, msg := range []string{eb.Error, eb.Message, eb.Detail} {
			if strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" && len(trimmed) < 512 {
		return trimmed
	}
	return http.StatusText(status)
}
