// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed = errors.New("event bus is shutting down")
	ErrBusFull   = errors.New("event channel full")
)

// Bus is an in-memory event bus. Events published with Publish are delivered
// by a single dispatcher in publish order.
type Bus struct {
	mu         sync.RWMutex
	handlers   map[EventType]map[string]Handler
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	eventChan  chan Event
	bufferSize int
	closed     bool
}

// Stats is a snapshot of the bus state.
type Stats struct {
	BufferSize      int
	PendingEvents   int
	HandlersPerType map[EventType]int
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		handlers:   make(map[EventType]map[string]Handler),
		logger:     logger.Named("event_bus"),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		eventChan:  make(chan Event, bufferSize),
		bufferSize: bufferSize,
	}

	go bus.dispatch()

	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = handler

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))

	return &subscription{
		id:       id,
		eventBus: b,
		types:    []EventType{eventType},
	}
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// SubscribeAll registers one handler for several event types under a single subscription.
func (b *Bus) SubscribeAll(handler Handler, eventTypes ...EventType) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	for _, eventType := range eventTypes {
		if b.handlers[eventType] == nil {
			b.handlers[eventType] = make(map[string]Handler)
		}
		b.handlers[eventType][id] = handler
	}

	b.logger.Debug("Handler subscribed",
		zap.Int("event_types", len(eventTypes)),
		zap.String("subscription_id", id))

	return &subscription{id: id, eventBus: b, types: eventTypes}
}

// Publish queues an event for ordered asynchronous delivery.
// A full queue drops the event and returns ErrBusFull.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.eventChan <- event:
		return nil
	default:
		b.logger.Warn("Event channel full, dropping event",
			zap.String("event_type", string(event.Type())))
		return ErrBusFull
	}
}

// PublishSync sends an event to all registered handlers synchronously.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	// Копия, чтобы не держать блокировку во время вызова обработчиков
	handlersCopy := make(map[string]Handler, len(handlers))
	for id, h := range handlers {
		handlersCopy[id] = h
	}
	b.mu.RUnlock()

	var errs []error
	for id, handler := range handlersCopy {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("handler_id", id),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("handlers failed: %w", errors.Join(errs...))
	}
	return nil
}

// dispatch delivers queued events one at a time so handlers observe publish order.
func (b *Bus) dispatch() {
	defer close(b.done)

	for {
		select {
		case <-b.ctx.Done():
			// Drain remaining events
			for {
				select {
				case event := <-b.eventChan:
					_ = b.PublishSync(context.Background(), event)
				default:
					return
				}
			}
		case event := <-b.eventChan:
			_ = b.PublishSync(b.ctx, event)
		}
	}
}

// unsubscribe removes a handler subscription.
func (b *Bus) unsubscribe(id string, eventTypes []EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range eventTypes {
		if handlers, ok := b.handlers[eventType]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.handlers, eventType)
			}
		}
	}

	b.logger.Debug("Handler unsubscribed", zap.String("subscription_id", id))
}

// Shutdown stops accepting events, delivers the queued ones and waits for the dispatcher.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.logger.Info("Shutting down event bus")
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()

	select {
	case <-b.done:
		b.logger.Info("Event bus shutdown complete")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Stats returns statistics about the event bus.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[EventType]int, len(b.handlers))
	for eventType, handlers := range b.handlers {
		counts[eventType] = len(handlers)
	}
	return Stats{
		BufferSize:      b.bufferSize,
		PendingEvents:   len(b.eventChan),
		HandlersPerType: counts,
	}
}
