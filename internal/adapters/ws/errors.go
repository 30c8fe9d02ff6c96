package ws

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDial             = errors.New("dial failed")
	ErrHandshake        = errors.New("handshake failed")
	ErrHeartbeatTimeout = errors.New("heartbeat timeout")
)
