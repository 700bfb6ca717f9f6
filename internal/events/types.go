// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

// EventType represents the type of event.
type EventType string

const (
	// Program events
	TokenCreated   EventType = "pumpfun.create"
	TokenTraded    EventType = "pumpfun.trade"
	CurveCompleted EventType = "pumpfun.complete"
	ParamsChanged  EventType = "pumpfun.set_params"
	UnknownProgram EventType = "pumpfun.unknown"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ProgramEvent carries one decoded Pump.fun event together with the transaction it came from.
type ProgramEvent struct {
	BaseEvent
	Slot      uint64
	Signature solana.Signature
	Payload   pumpfun.Event
}

// TypeFor maps a program event kind to its bus event type.
func TypeFor(kind pumpfun.EventKind) EventType {
	switch kind {
	case pumpfun.EventCreate:
		return TokenCreated
	case pumpfun.EventTrade:
		return TokenTraded
	case pumpfun.EventComplete:
		return CurveCompleted
	case pumpfun.EventSetParams:
		return ParamsChanged
	default:
		return UnknownProgram
	}
}

// NewProgramEvent wraps a decoded event for publishing.
func NewProgramEvent(slot uint64, signature solana.Signature, payload pumpfun.Event, received time.Time) *ProgramEvent {
	return &ProgramEvent{
		BaseEvent: BaseEvent{EventType: TypeFor(payload.Kind()), EventTime: received},
		Slot:      slot,
		Signature: signature,
		Payload:   payload,
	}
}
