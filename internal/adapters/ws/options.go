package ws

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithUserAgent sets the identity string sent in the handshake.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithOptionsProvider sets the source of the current options string.
func WithOptionsProvider(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.options = fn
		}
	}
}

// WithConnectedHook sets the callback notified on transport state flips.
func WithConnectedHook(fn func(bool)) Option {
	return func(c *Client) {
		if fn != nil {
			c.connected = fn
		}
	}
}

// WithClock sets a custom clock, used by tests to drive the timers.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithHeartbeatTimeout sets how long the connection may stay silent.
func WithHeartbeatTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.heartbeatTimeout = d
		}
	}
}

// WithReconnectDelay sets the fixed pause before each reconnect attempt.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.reconnectDelay = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
