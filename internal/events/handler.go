// internal/events/handler.go
package events

import (
	"context"
	"fmt"
)

// Handler processes events of a specific type.
type Handler interface {
	// Handle processes an event. Runs on the bus dispatcher, so it should not block.
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow the use of ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// ProgramHandler adapts a function over *ProgramEvent. Other event values are rejected.
func ProgramHandler(fn func(ctx context.Context, event *ProgramEvent) error) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) error {
		pe, ok := event.(*ProgramEvent)
		if !ok {
			return fmt.Errorf("unexpected event %T for %s", event, event.Type())
		}
		return fn(ctx, pe)
	})
}

// Subscription represents a subscription to events.
type Subscription interface {
	// Unsubscribe removes the subscription.
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	types    []EventType
}

func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.types)
}
