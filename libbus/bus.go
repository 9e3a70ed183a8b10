// Package libbus carries conversation snapshots from the chat core to
// whatever Presentation Surface is rendering them. Two implementations:
// in-memory for single-process use and NATS for out-of-process surfaces.
package libbus

import (
	"context"
	"errors"
)

var ErrConnectionClosed = errors.New("connection closed")

// Messenger is a fire-and-forget publish/subscribe surface. The chat core
// publishes a serialized snapshot after every mutation; subscribers render.
type Messenger interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Stream(ctx context.Context, subject string, ch chan<- []byte) (Subscription, error)
	Close() error
}

// Subscription detaches a Stream subscriber.
type Subscription interface {
	Unsubscribe() error
}
