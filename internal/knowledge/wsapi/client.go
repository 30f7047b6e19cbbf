package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"nhooyr.io/websocket"       //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	"nhooyr.io/websocket/wsjson" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/resilience"
)

// Config holds websocket client configuration.
type Config struct {
	// URL is the websocket endpoint, e.g. ws://localhost:8080/kcl_rosplan.
	URL string

	// Timeout bounds each call (default: 10s). A call that times out closes
	// the connection.
	Timeout time.Duration

	// RequestsPerSecond limits outgoing calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxFailures consecutive transport failures open the circuit (default: 3).
	MaxFailures uint32

	// DialOptions are passed to websocket.Dial.
	DialOptions *websocket.DialOptions //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
}

// Client is a knowledge.Service backed by a websocket connection.
// Calls are serialized over the one connection.
type Client struct {
	*knowledge.RemoteService
	caller *caller
}

// Dial connects to the websocket endpoint in config.URL.
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsapi: URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, config.URL, config.DialOptions) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	if err != nil {
		return nil, fmt.Errorf("wsapi: failed to dial %s: %w", config.URL, err)
	}
	conn.SetReadLimit(maxFrameBytes)

	c := &caller{
		conn:    conn,
		timeout: config.Timeout,
		guard: resilience.NewGuard(resilience.GuardConfig{
			RequestsPerSecond: config.RequestsPerSecond,
			Burst:             config.Burst,
			Breaker: resilience.CircuitBreakerConfig{
				Name:         "wsapi " + config.URL,
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

// Close closes the connection.
func (c *Client) Close() error {
	return c.caller.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
}

type caller struct {
	mu      sync.Mutex
	conn    *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	nextID  uint64
	timeout time.Duration
	guard   *resilience.Guard
}

// Call sends one request frame and waits for the response with the same id.
func (c *caller) Call(ctx context.Context, method string, req, resp any) error {
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		return c.call(ctx, method, req, resp)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("wsapi: %s: %w", method, err)
	}
	return err
}

func (c *caller) call(ctx context.Context, method string, req, resp any) error {
	params, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("wsapi: failed to marshal %s request: %w", method, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.nextID++
	id := c.nextID
	if err := wsjson.Write(ctx, c.conn, requestFrame{ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("wsapi: %s: failed to send request: %w", method, err)
	}

	for {
		var frame responseFrame
		if err := wsjson.Read(ctx, c.conn, &frame); err != nil {
			return fmt.Errorf("wsapi: %s: failed to read response: %w", method, err)
		}
		if frame.ID != id {
			// Answer to an earlier call that was abandoned.
			continue
		}
		if frame.Error != nil {
			return &knowledge.RemoteError{Method: method, Code: frame.Error.Code, Message: frame.Error.Error}
		}
		if resp == nil || len(frame.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(frame.Result, resp); err != nil {
			return fmt.Errorf("wsapi: failed to decode %s response: %w", method, err)
		}
		return nil
	}
}
