// Package pubsub fans typed events out to in-process subscribers.
// The attendance service publishes ledger and registry changes through it and
// the logger publishes formatted lines.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	CreatedEvent  EventType = "created"
	UpdatedEvent  EventType = "updated"
	DeletedEvent  EventType = "deleted"
	ReloadedEvent EventType = "reloaded"
)

// Event is a published payload stamped with its publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher emits events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
