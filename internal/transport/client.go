package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/roach88/devlink/internal/protocol"
)

// ErrNotConnected is returned by Send while no connection is open.
var ErrNotConnected = errors.New("transport: not connected")

// Submitter receives decoded batches. *engine.Engine implements it.
type Submitter interface {
	Submit(batch []protocol.Msg) bool
}

// Config configures a Client.
type Config struct {
	// URL is the websocket endpoint, ws:// or wss://.
	URL string

	// DeviceID stamps outgoing messages that carry no device id.
	DeviceID string

	// WriteTimeout bounds each outgoing write. Zero means no deadline.
	WriteTimeout time.Duration

	// ReconnectMaxElapsed bounds how long one reconnect attempt keeps
	// retrying, and how long a peer may keep dropping connections before
	// they deliver anything. Zero retries until the context ends.
	ReconnectMaxElapsed time.Duration

	// InitialBackoff and MaxBackoff shape the exponential retry interval.
	// Zero uses the backoff package defaults.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Header is sent with every dial.
	Header http.Header
}

// Client is a reconnecting websocket client.
//
// Thread-safety: Send is safe for concurrent use. Run must be called once.
type Client struct {
	cfg       Config
	submit    Submitter
	dialer    *websocket.Dialer
	validator *protocol.Validator
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	conn *websocket.Conn
}

// Option configures a Client.
type Option func(*Client)

// WithDialer sets the websocket dialer. Default: websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithValidator enables schema validation of every incoming message.
func WithValidator(v *protocol.Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithNow sets the time source used to stamp outgoing messages.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client that hands decoded batches to submit.
func NewClient(cfg Config, submit Submitter, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("transport: URL is required")
	}
	if submit == nil {
		return nil, fmt.Errorf("transport: submitter is required")
	}

	c := &Client{
		cfg:    cfg,
		submit: submit,
		dialer: websocket.DefaultDialer,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run dials the peer and reads frames until ctx ends.
//
// Failed dials are retried with exponential backoff. A dropped connection is
// redialed after a delay drawn from a second backoff that persists across
// connections; it resets only once a connection proved healthy by delivering
// a frame or staying up past the initial interval. Run returns ctx.Err() on
// cancellation. It gives up with an error once dialing, or a run of
// unhealthy connections, exceeds Config.ReconnectMaxElapsed.
func (c *Client) Run(ctx context.Context) error {
	redial := c.newBackOff()
	var unstableSince time.Time

	for {
		conn, err := backoff.Retry(ctx, func() (*websocket.Conn, error) {
			return c.dial(ctx)
		}, c.retryOptions()...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connect %s: %w", c.cfg.URL, err)
		}

		c.logger.Info("connected", "url", c.cfg.URL)
		healthy, err := c.serve(ctx, conn, redial.InitialInterval)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if healthy {
			redial.Reset()
			unstableSince = time.Time{}
		} else if unstableSince.IsZero() {
			unstableSince = time.Now()
		} else if limit := c.cfg.ReconnectMaxElapsed; limit > 0 && time.Since(unstableSince) > limit {
			return fmt.Errorf("connect %s: connection unstable for %s: %w", c.cfg.URL, limit, err)
		}

		wait := redial.NextBackOff()
		c.logger.Warn("connection lost, reconnecting", "url", c.cfg.URL, "error", err, "retry_in", wait)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if c.cfg.InitialBackoff > 0 {
		b.InitialInterval = c.cfg.InitialBackoff
	}
	if c.cfg.MaxBackoff > 0 {
		b.MaxInterval = c.cfg.MaxBackoff
	}
	return b
}

func (c *Client) retryOptions() []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("dial failed", "url", c.cfg.URL, "error", err, "retry_in", next)
		}),
		// Zero disables the elapsed-time limit
		backoff.WithMaxElapsedTime(c.cfg.ReconnectMaxElapsed),
	}
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, c.cfg.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// serve reads frames from conn until it fails or ctx ends. The connection is
// reported healthy if it delivered a frame or stayed up for at least minUp.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn, minUp time.Duration) (healthy bool, err error) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})

	defer func() {
		stop()
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	start := time.Now()
	frames := 0
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return frames > 0 || time.Since(start) >= minUp, err
		}
		frames++
		if kind != websocket.TextMessage {
			c.logger.Debug("ignoring non-text frame", "frame_type", kind)
			continue
		}
		c.handleFrame(data)
	}
}

// handleFrame decodes one frame and submits the surviving messages.
func (c *Client) handleFrame(frame []byte) {
	var msgs []protocol.Msg
	var errs []error
	if c.validator == nil {
		msgs, errs = protocol.DecodeBatch(frame)
	} else {
		msgs, errs = c.decodeValidated(frame)
	}
	for _, err := range errs {
		c.logger.Warn("dropping message", "error", err)
	}

	if len(msgs) == 0 {
		return
	}
	if !c.submit.Submit(msgs) {
		c.logger.Warn("engine stopped, dropping batch", "messages", len(msgs))
	}
}

// decodeValidated checks each raw element against the schema before decoding
// it. Decoding fills absent fields with zero values, so validation must see
// the element as received.
func (c *Client) decodeValidated(frame []byte) ([]protocol.Msg, []error) {
	elems, err := protocol.SplitFrame(frame)
	if err != nil {
		return nil, []error{err}
	}

	msgs := make([]protocol.Msg, 0, len(elems))
	var errs []error
	for i, elem := range elems {
		if err := c.validator.Validate(elem); err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		m, err := protocol.Decode(elem)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, errs
}

// Send implements protocol.Sender.
func (c *Client) Send(msg protocol.Msg) error {
	if msg.DeviceID == "" {
		msg.DeviceID = c.cfg.DeviceID
	}
	if msg.TimeStamp == 0 {
		msg.TimeStamp = float64(c.now().UnixMilli())
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Kind(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if c.cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return fmt.Errorf("send %s: %w", msg.Kind(), err)
		}
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", msg.Kind(), err)
	}
	return nil
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}
