// Package httpapi carries the knowledge base protocol over HTTP: one
// POST {prefix}/{method} endpoint per service, JSON in and out.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/resilience"
)

// Config holds HTTP client configuration.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:8080.
	BaseURL string

	// Prefix is the service namespace (default: /kcl_rosplan).
	Prefix string

	// Timeout bounds each request (default: 10s).
	Timeout time.Duration

	// RequestsPerSecond limits outgoing requests; zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxFailures consecutive transport failures open the circuit (default: 3).
	MaxFailures uint32

	// HTTPClient overrides the default client (tests use httptest's).
	HTTPClient *http.Client
}

// Client is a knowledge.Service backed by HTTP calls.
type Client struct {
	*knowledge.RemoteService
	caller *caller
}

// NewClient creates an HTTP knowledge base client.
// If configuration values are not provided, the following defaults are used:
//   - Prefix: /kcl_rosplan
//   - Timeout: 10 seconds
//   - MaxFailures: 3
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("httpapi: base URL is required")
	}
	if config.Prefix == "" {
		config.Prefix = knowledge.DefaultPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	c := &caller{
		baseURL: strings.TrimRight(config.BaseURL, "/") + "/" + strings.Trim(config.Prefix, "/"),
		client:  httpClient,
		timeout: config.Timeout,
		guard: resilience.NewGuard(resilience.GuardConfig{
			RequestsPerSecond: config.RequestsPerSecond,
			Burst:             config.Burst,
			Breaker: resilience.CircuitBreakerConfig{
				Name:         "httpapi " + config.BaseURL,
				MaxFailures:  config.MaxFailures,
				IsSuccessful: knowledge.IsServiceAnswer,
			},
		}),
	}

	return &Client{RemoteService: knowledge.NewRemoteService(c), caller: c}, nil
}

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *Client) BreakerState() string {
	return c.caller.guard.Breaker().State()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.caller.client.CloseIdleConnections()
	return nil
}

type caller struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	guard   *resilience.Guard
}

// Call posts req to {baseURL}/{method} through the guard and decodes the reply into resp.
func (c *caller) Call(ctx context.Context, method string, req, resp any) error {
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		return c.call(ctx, method, req, resp)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("httpapi: %s: %w", method, err)
	}
	return err
}

func (c *caller) call(ctx context.Context, method string, req, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("httpapi: failed to marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("httpapi: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("httpapi: %s: failed to send request: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64<<10))
		var errResp knowledge.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &knowledge.RemoteError{Method: method, Code: errResp.Code, Message: errResp.Error}
		}
		return fmt.Errorf("httpapi: %s returned status %d: %s", method, httpResp.StatusCode, string(body))
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("httpapi: failed to decode %s response: %w", method, err)
	}
	return nil
}
