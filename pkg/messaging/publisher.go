// Package messaging defines the outbound domain events and the publisher abstraction.
package messaging

import (
	"context"
)

// CriticalCommentsSubject carries an event per critical comment detected.
const CriticalCommentsSubject = "sentiment.comments.critical"

// Event is a message bound for a broker subject.
type Event interface {
	Subject() string
	// ID identifies the event for broker-side deduplication. Empty disables it.
	ID() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when NATS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
