// Package channels provides small helpers for non-blocking channel sends.
package channels

import (
	"errors"
)

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)
