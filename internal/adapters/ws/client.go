// Package ws maintains the persistent feed connection to the timing relay.
//
// The client is an explicit state machine: Disconnected -> Connecting ->
// Open -> RetryWait -> Connecting -> ... . Each connection instance sends
// the handshake exactly once, feeds every inbound frame to the queue, and
// keeps a heartbeat watchdog armed; a silent connection is force-closed
// and the retry path takes over. Reconnects use a fixed delay, there is no
// backoff.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/okian/pitwall/internal/domain/message"
	"github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// State names one position in the connection lifecycle.
type State string

// Connection lifecycle states.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateRetryWait    State = "retry_wait"
)

// Handshake version fields sent in the %V record.
const (
	docVersion    = "1.0"
	styleVersion  = "1.1"
	clientVersion = "0.1.0"
)

// probeReply is the literal answer to the server's liveness probe.
const probeReply = "pong"

// Default connection tuning.
const (
	defaultHeartbeatTimeout = 3 * time.Second
	defaultReconnectDelay   = 3 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultDialTimeout      = 10 * time.Second
)

// Sink receives every structured frame read off the wire.
type Sink interface {
	Enqueue(ctx context.Context, f model.Frame) bool
}

// Client dials the relay and keeps the connection alive for the life of
// the process. Run is the only goroutine that writes to the socket.
type Client struct {
	url       string
	userAgent string

	// options returns the current display options string. It is re-read
	// on every inbound frame and %O is resent when the value changed.
	options func() string

	// connected is notified on every transport state flip.
	connected func(bool)

	sink  Sink
	clock clockwork.Clock

	heartbeatTimeout time.Duration
	reconnectDelay   time.Duration
	writeTimeout     time.Duration

	dialer *websocket.Dialer
	logger logger.Logger

	mu    sync.RWMutex
	state State
	conn  *websocket.Conn
}

// New creates a Client for the given relay URL, feeding frames to sink.
func New(url string, sink Sink, opts ...Option) *Client {
	c := &Client{
		url:              url,
		userAgent:        "pitwall",
		options:          func() string { return "" },
		connected:        func(bool) {},
		sink:             sink,
		clock:            clockwork.NewRealClock(),
		heartbeatTimeout: defaultHeartbeatTimeout,
		reconnectDelay:   defaultReconnectDelay,
		writeTimeout:     defaultWriteTimeout,
		dialer:           &websocket.Dialer{HandshakeTimeout: defaultDialTimeout},
		logger:           logger.Get().Named("ws"),
		state:            StateDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Bounce drops the current connection, if any. Run notices the read
// failure and dials again after the usual retry wait.
func (c *Client) Bounce() {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) setState(ctx context.Context, next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()
	if prev != next {
		c.logger.Debug(ctx, "connection state changed",
			logger.String("from", string(prev)),
			logger.String("to", string(next)),
		)
	}
}

// Run drives the connect/read/retry loop until ctx is cancelled. Transport
// failures are never fatal; every path falls through to the fixed-delay
// retry wait.
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.setState(ctx, StateDisconnected)
			return nil
		}

		c.setState(ctx, StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil) //nolint:bodyclose // gorilla hijacks the response body
		if err != nil {
			c.logger.Warn(ctx, "dial failed",
				logger.String("url", c.url),
				logger.Error(err),
			)
		} else {
			c.session(ctx, conn)
		}

		if ctx.Err() != nil {
			c.setState(ctx, StateDisconnected)
			return nil
		}

		c.setState(ctx, StateRetryWait)
		metrics.RecordReconnect()
		select {
		case <-ctx.Done():
			c.setState(ctx, StateDisconnected)
			return nil
		case <-c.clock.After(c.reconnectDelay):
		}
	}
}

// session owns one connection instance from handshake to close.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) {
	instance := uuid.NewString()
	log := c.logger.Named("session")
	opened := false
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
		if opened {
			c.connected(false)
			metrics.UpdateConnectionState(false)
		}
		log.Info(ctx, "connection closed", logger.String("instance", instance))
	}()

	lastOptions, err := c.handshake(conn)
	if err != nil {
		log.Warn(ctx, "handshake failed", logger.Error(err))
		return
	}
	metrics.RecordHandshake()
	c.setState(ctx, StateOpen)
	opened = true
	c.connected(true)
	metrics.UpdateConnectionState(true)
	log.Info(ctx, "connection open",
		logger.String("instance", instance),
		logger.String("url", c.url),
	)

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- payload:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	// The watchdog is singular per connection instance; it is stopped
	// before session returns so the retry wait never races a stale timer.
	watchdog := c.clock.NewTimer(c.heartbeatTimeout)
	defer stopAndDrainTimer(watchdog)

	for {
		select {
		case <-ctx.Done():
			return

		case <-watchdog.Chan():
			metrics.RecordHeartbeatTimeout()
			log.Warn(ctx, "heartbeat timeout, closing connection",
				logger.String("instance", instance),
				logger.Duration("timeout", c.heartbeatTimeout),
			)
			c.writeClose(conn, websocket.ClosePolicyViolation, ErrHeartbeatTimeout.Error())
			return

		case payload, ok := <-frames:
			if !ok {
				err := <-readErr
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Warn(ctx, "read failed", logger.Error(err))
				}
				return
			}
			stopAndDrainTimer(watchdog)
			watchdog.Reset(c.heartbeatTimeout)
			metrics.RecordFrameReceived()

			if message.IsProbe(payload) {
				metrics.RecordProbeReply()
				if err := c.writeText(conn, []byte(probeReply)); err != nil {
					log.Warn(ctx, "probe reply failed", logger.Error(err))
					return
				}
			} else if !c.sink.Enqueue(ctx, model.NewFrame(payload, c.clock.Now())) {
				log.Warn(ctx, "frame dropped, queue rejected it",
					logger.Int("bytes", len(payload)),
				)
			}

			if current := c.options(); current != lastOptions {
				lastOptions = current
				if err := c.writeText(conn, message.Compose(message.KindClientOptions, current)); err != nil {
					log.Warn(ctx, "options update failed", logger.Error(err))
					return
				}
				log.Info(ctx, "options resent", logger.String("options", current))
			}
		}
	}
}

// handshake identifies this client, sent exactly once per connection.
func (c *Client) handshake(conn *websocket.Conn) (string, error) {
	opts := c.options()
	records := [][]byte{
		message.Compose(message.KindClientIdent, c.userAgent),
		message.Compose(message.KindClientVersion, docVersion, styleVersion, clientVersion),
		message.Compose(message.KindClientOptions, opts),
	}
	for _, rec := range records {
		if err := c.writeText(conn, rec); err != nil {
			return "", err
		}
	}
	return opts, nil
}

// Write deadlines use the wall clock; the injectable clock only drives
// the watchdog and retry timers.
func (c *Client) writeText(conn *websocket.Conn, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) writeClose(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
}

// stopAndDrainTimer stops a timer and drains its channel so a Reset never
// observes a stale fire.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
