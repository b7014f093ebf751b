// Package pubsub carries change notifications from fields to whoever
// displays or records them.
package pubsub

import (
	"context"
	"time"
)

// EventType tells what happened to the published value.
type EventType string

const (
	// ChangedEvent carries a committed value that is due a change notification.
	ChangedEvent EventType = "changed"
	// ClearedEvent is published when a field returns to its empty baseline.
	ClearedEvent EventType = "cleared"
)

// Event is a published notification.
type Event[T any] struct {
	Type    EventType
	Payload T
	// Seq increases by one per Publish on a broker.
	Seq       uint64
	Timestamp time.Time
}

// Subscriber hands out event channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
