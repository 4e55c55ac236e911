package queue

import (
	"context"
	"io"

	"github.com/emrgen/metadata/internal/model"
)

// EventTopic is the default topic audit events are published to.
var EventTopic = "metadata.events"

// EventQueue fans audit events out to other services.
type EventQueue interface {
	io.Closer
	// Publish appends an audit event to the queue.
	Publish(ctx context.Context, event *model.Event) error
}

var _ EventQueue = Nop{}

// Nop drops every event.
type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) Publish(ctx context.Context, event *model.Event) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
