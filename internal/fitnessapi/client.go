// Package fitnessapi is the HTTP client for the fitness service that owns
// profiles, plans, diaries and the chatbot.
package fitnessapi

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

	"github.com/dom/fitgate/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 10 << 20

// Client calls the fitness service. Every request is bounded by the
// configured timeout and is never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// Response is an upstream reply whose body is known to be valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends one request. Transport failures, timeouts and non-JSON bodies are
// reported as domain.ErrUpstreamUnavailable; any HTTP status is returned as is.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", domain.ErrUpstreamUnavailable, method, path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("null")
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s returned non-JSON body (status %d)", domain.ErrUpstreamUnavailable, method, path, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Get is Do without a body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// decode unmarshals a successful response into v.
func decode(resp *Response, op string, v interface{}) error {
	if !resp.OK() {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrUpstreamUnavailable, op, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrUpstreamUnavailable, op, err)
	}
	return nil
}

// PathSegment escapes a value for use as one URL path segment.
func PathSegment(s string) string {
	return url.PathEscape(s)
}
