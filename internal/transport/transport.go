package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned when writing to a transport that has been closed.
var ErrClosed = errors.New("transport closed")

// Transport is the downward boundary of the protocol core: a byte-oriented
// link that can write one stuffed packet and delivers inbound notification
// packets, one callback per notification, in receipt order.
//
// Connection management, reconnection, and discovery live outside the
// protocol core; write failures propagate to the caller.
type Transport interface {
	// Write sends one packet over the link.
	Write(ctx context.Context, data []byte) error

	// Subscribe registers the notification callback. Only one callback is
	// active at a time; registering replaces the previous one.
	Subscribe(fn func(data []byte))

	// Close shuts the link down and stops notification delivery.
	Close() error
}
