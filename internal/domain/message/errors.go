package message

import "errors"

// Sentinel kinds for codec errors.
var (
	ErrEmptyFrame = errors.New("empty frame")
	ErrMalformed  = errors.New("malformed frame")
	ErrShortRecord = errors.New("record has too few fields")
)
