// Package client provides a typed Go SDK for the back-office REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the top-level back-office API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	Approvals  *ApprovalService
	Properties *PropertyService
	Bookings   *BookingService
	Audit      *AuditService
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token for authentication.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL (e.g. "http://localhost:3030").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.Approvals = &ApprovalService{c: c}
	c.Properties = &PropertyService{c: c}
	c.Bookings = &BookingService{c: c}
	c.Audit = &AuditService{c: c}
	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.raw(ctx, http.MethodGet, "/api/v1/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ready returns the readiness check response. A not-ready server answers
// 503, which is returned as an *APIError.
func (c *Client) Ready(ctx context.Context) (*ReadinessResponse, error) {
	var resp ReadinessResponse
	if err := c.raw(ctx, http.MethodGet, "/api/v1/ready", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// envelope is the success wrapper used by every data endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	HasMore bool            `json:"has_more"`
}

// send executes an HTTP request and returns the response body.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// raw decodes an unwrapped JSON response (health endpoints).
func (c *Client) raw(ctx context.Context, method, path string, result any) error {
	body, err := c.send(ctx, method, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do executes a request against an enveloped endpoint and decodes data into
// result. It reports has_more for list endpoints.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) (bool, error) {
	respBody, err := c.send(ctx, method, path, body)
	if err != nil {
		return false, err
	}

	if len(respBody) == 0 {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return false, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.HasMore, nil
}

// get is a convenience wrapper for GET requests with query parameters.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) (bool, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post is a convenience wrapper for POST requests.
func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	_, err := c.do(ctx, http.MethodPost, path, body, result)
	return err
}

// patch is a convenience wrapper for PATCH requests.
func (c *Client) patch(ctx context.Context, path string, body any, result any) error {
	_, err := c.do(ctx, http.MethodPatch, path, body, result)
	return err
}

// pageParams encodes limit and offset when set.
func pageParams(params url.Values, limit, offset int) url.Values {
	if params == nil {
		params = url.Values{}
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	return params
}

func propertyPath(id string, suffix string) string {
	p := "/api/v1/properties/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}
