// Package model contains domain models passed between layers.
package model

import "time"

// Frame is one text frame as delivered by the transport, before decoding.
// Payload is the raw frame body; Received is when the connection read it.
type Frame struct {
	Payload  []byte
	Received time.Time
}

// NewFrame builds a Frame stamped with the given receive time.
func NewFrame(payload []byte, received time.Time) Frame {
	return Frame{Payload: payload, Received: received}
}
