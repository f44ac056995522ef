package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/inkwellhq/blockview/internal/infrastructure/resilience"
	"github.com/inkwellhq/blockview/internal/shared/types"
)

// ErrClosed is returned for operations on a closed client.
var ErrClosed = errors.New("host client is closed")

// Config holds the two host endpoints: the event link (websocket) for
// fire-and-forget commands and async events, and the control endpoint
// (HTTP) for request/response operations.
type Config struct {
	EventsURL      string
	ControlURL     string
	DialTimeout    time.Duration
	ControlTimeout time.Duration
	RetryMax       int
}

// DefaultConfig returns production defaults for a local host process.
func DefaultConfig() Config {
	return Config{
		EventsURL:      "ws://127.0.0.1:9400/events",
		ControlURL:     "http://127.0.0.1:9400",
		DialTimeout:    5 * time.Second,
		ControlTimeout: 10 * time.Second,
		RetryMax:       2,
	}
}

// envelope frames every message on the event link.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// rawEnvelope defers payload decoding until the type is known.
type rawEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client talks to the native view host over a websocket event link plus
// an HTTP control endpoint. Commands on the event link are one-way; the
// control endpoint carries the request/response operations, guarded by a
// circuit breaker so a dead host fails fast instead of piling up retries.
type Client struct {
	cfg     Config
	conn    *websocket.Conn
	writeMu sync.Mutex

	control *retryablehttp.Client
	breaker *resilience.Breaker

	events    chan Event
	closeOnce sync.Once
	closed    chan struct{}
	logger    *zap.Logger
}

// Dial connects to the host's event link and prepares the control client.
func Dial(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	conn, _, err := dialer.Dial(cfg.EventsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial view host: %w", err)
	}

	control := retryablehttp.NewClient()
	control.RetryMax = cfg.RetryMax
	control.HTTPClient.Timeout = cfg.ControlTimeout
	control.Logger = nil

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		control: control,
		breaker: resilience.New("host-control", resilience.Settings{
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		events: make(chan Event, 64),
		closed: make(chan struct{}),
		logger: logger.With(zap.String("component", "host-client")),
	}

	go c.readLoop()

	return c, nil
}

// UpdateView sends an update-view command on the event link.
func (c *Client) UpdateView(ctx context.Context, update types.UpdateView) error {
	return c.write(MsgUpdateView, update)
}

// RemoveView sends a remove-view command on the event link.
func (c *Client) RemoveView(ctx context.Context, viewID string) error {
	return c.write(MsgRemoveView, types.RemoveView{ViewID: viewID})
}

// NavigateBack requests a history-back through the control endpoint.
func (c *Client) NavigateBack(ctx context.Context, viewID string) (types.NavigateBackResult, error) {
	var result types.NavigateBackResult
	err := c.controlCall(ctx, http.MethodPost, fmt.Sprintf("/views/%s/navigate-back", viewID), &result)
	return result, err
}

// DevToolsState queries the devtools panel state through the control endpoint.
func (c *Client) DevToolsState(ctx context.Context, viewID string) (types.DevToolsResult, error) {
	var result types.DevToolsResult
	err := c.controlCall(ctx, http.MethodGet, fmt.Sprintf("/views/%s/devtools", viewID), &result)
	return result, err
}

// ToggleDevTools toggles the devtools panel through the control endpoint.
func (c *Client) ToggleDevTools(ctx context.Context, viewID string) (types.DevToolsResult, error) {
	var result types.DevToolsResult
	err := c.controlCall(ctx, http.MethodPost, fmt.Sprintf("/views/%s/devtools/toggle", viewID), &result)
	return result, err
}

// Events returns the host event stream. Closed when the link drops.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close tears down the event link. Safe to call multiple times.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write(msgType string, payload any) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	data, err := sonic.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msgType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msgType, err)
	}
	return nil
}

// readLoop decodes host events in arrival order and tags their origin.
func (c *Client) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Warn("host event link dropped", zap.Error(err))
			}
			return
		}

		var env rawEnvelope
		if err := sonic.Unmarshal(data, &env); err != nil {
			c.logger.Warn("discarding malformed host message", zap.Error(err))
			continue
		}

		switch env.Type {
		case MsgViewInitialized:
			var ev types.ViewInitialized
			if err := sonic.Unmarshal(env.Payload, &ev); err != nil {
				c.logger.Warn("discarding malformed view-initialized event", zap.Error(err))
				continue
			}
			ev.Origin = types.OriginHost
			c.deliver(Event{Initialized: &ev})
		case MsgNavigationUpdate:
			var ev types.NavigationUpdate
			if err := sonic.Unmarshal(env.Payload, &ev); err != nil {
				c.logger.Warn("discarding malformed navigation-update event", zap.Error(err))
				continue
			}
			c.deliver(Event{Navigation: &ev})
		default:
			c.logger.Debug("ignoring unknown host message", zap.String("type", env.Type))
		}
	}
}

func (c *Client) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.closed:
	}
}

func (c *Client) controlCall(ctx context.Context, method, path string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, method, c.cfg.ControlURL+path, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.control.Do(req)
		if err != nil {
			return nil, fmt.Errorf("host control call failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read host response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("host control call returned %d", resp.StatusCode)
		}
		if err := sonic.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode host response: %w", err)
		}
		return nil, nil
	})
	return err
}
