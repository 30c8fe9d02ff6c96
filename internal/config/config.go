// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ServerURL is the websocket URL of the timing relay,
	// e.g. "ws://timing.example.com:50000/stream".
	ServerURL string `koanf:"server_url"`

	// UserAgent identifies this client in the handshake.
	UserAgent string `koanf:"user_agent"`

	// Options is the display options string sent during the handshake and
	// re-sent whenever it changes.
	Options string `koanf:"options"`

	// FrameQueueSize bounds the in-memory frame queue.
	FrameQueueSize int `koanf:"queue_size"`

	// MaxLeaders caps how many cars the leader strings list.
	MaxLeaders int `koanf:"max_leaders"`

	// Timezone overrides the server-pushed timezone when set.
	Timezone string `koanf:"timezone"`

	// HeartbeatTimeoutMS drops the connection when no frame arrives for
	// this long.
	HeartbeatTimeoutMS int `koanf:"heartbeat_timeout_ms"`

	// ReconnectDelayMS is the fixed pause before each reconnect attempt.
	ReconnectDelayMS int `koanf:"reconnect_delay_ms"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		ServerURL:          "ws://127.0.0.1:50000/stream",
		UserAgent:          "pitwall",
		Options:            "",
		FrameQueueSize:     4096,
		MaxLeaders:         3,
		Timezone:           "",
		HeartbeatTimeoutMS: 3000,
		ReconnectDelayMS:   3000,
	}
	return c
}
