// =============================
// File: pkg/pumpfun/events.go
// =============================
package pumpfun

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// EventKind is the name the program's IDL gives an event.
type EventKind string

const (
	EventCreate    EventKind = "createEvent"
	EventTrade     EventKind = "tradeEvent"
	EventComplete  EventKind = "completeEvent"
	EventSetParams EventKind = "setParamsEvent"
)

// Event discriminators, sha256("event:<Name>")[:8].
var eventDiscriminators = map[[8]byte]EventKind{
	{0x1b, 0x72, 0xa9, 0x4d, 0xde, 0xeb, 0x63, 0x76}: EventCreate,
	{0xbd, 0xdb, 0x7f, 0xd3, 0x4e, 0xe6, 0x61, 0xee}: EventTrade,
	{0x5f, 0x72, 0x61, 0x9c, 0xd4, 0x2e, 0x98, 0x08}: EventComplete,
	{0xdf, 0xc3, 0x9f, 0xf6, 0x3e, 0x30, 0x8f, 0x83}: EventSetParams,
}

const programDataPrefix = "Program data: "

// RawEvent is an event body tagged with its IDL name. Data excludes the discriminator.
type RawEvent struct {
	Name string
	Data []byte
}

// Event is one of CreateEvent, TradeEvent, CompleteEvent or SetParamsEvent.
type Event interface {
	Kind() EventKind
	isEvent()
}

type CreateEvent struct {
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
	Creator      solana.PublicKey
	Name         string
	Symbol       string
	URI          string
}

// Reserves is the curve snapshot a trade left behind.
type Reserves struct {
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
}

type TradeEvent struct {
	Mint        solana.PublicKey
	SolAmount   uint64
	TokenAmount uint64
	IsBuy       bool
	User        solana.PublicKey
	Timestamp   int64
	Reserves    Reserves
}

// Time returns the trade's block time.
func (e *TradeEvent) Time() time.Time {
	return time.Unix(e.Timestamp, 0)
}

type CompleteEvent struct {
	User         solana.PublicKey
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	Timestamp    int64
}

type SetParamsEvent struct {
	FeeRecipient                solana.PublicKey
	Authority                   solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

func (*CreateEvent) Kind() EventKind    { return EventCreate }
func (*TradeEvent) Kind() EventKind     { return EventTrade }
func (*CompleteEvent) Kind() EventKind  { return EventComplete }
func (*SetParamsEvent) Kind() EventKind { return EventSetParams }

func (*CreateEvent) isEvent()    {}
func (*TradeEvent) isEvent()     {}
func (*CompleteEvent) isEvent()  {}
func (*SetParamsEvent) isEvent() {}

// DecodeEvent maps a tagged event body to its domain event.
// Unknown names yield *UnknownEventError.
func DecodeEvent(raw RawEvent) (Event, error) {
	decoder := bin.NewBorshDecoder(raw.Data)

	var (
		event Event
		err   error
	)
	switch EventKind(raw.Name) {
	case EventCreate:
		event, err = decodeCreateEvent(decoder)
	case EventTrade:
		event, err = decodeTradeEvent(decoder)
	case EventComplete:
		event, err = decodeCompleteEvent(decoder)
	case EventSetParams:
		event, err = decodeSetParamsEvent(decoder)
	default:
		return nil, &UnknownEventError{Name: raw.Name}
	}
	if err != nil {
		return nil, &DecodeError{Account: raw.Name, Length: len(raw.Data), Err: fmt.Errorf("%w: %v", ErrTruncatedBuffer, err)}
	}
	return event, nil
}

func decodeCreateEvent(decoder *bin.Decoder) (*CreateEvent, error) {
	e := &CreateEvent{}
	var err error
	for _, field := range []*string{&e.Name, &e.Symbol, &e.URI} {
		if *field, err = readBorshString(decoder); err != nil {
			return nil, err
		}
	}
	for _, field := range []*solana.PublicKey{&e.Mint, &e.BondingCurve, &e.User} {
		if *field, err = readPublicKey(decoder); err != nil {
			return nil, err
		}
	}

	e.Creator = e.User
	if decoder.Remaining() >= solana.PublicKeyLength {
		if e.Creator, err = readPublicKey(decoder); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func decodeTradeEvent(decoder *bin.Decoder) (*TradeEvent, error) {
	e := &TradeEvent{}
	var err error
	if e.Mint, err = readPublicKey(decoder); err != nil {
		return nil, err
	}
	if e.SolAmount, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if e.TokenAmount, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if e.IsBuy, err = decoder.ReadBool(); err != nil {
		return nil, err
	}
	if e.User, err = readPublicKey(decoder); err != nil {
		return nil, err
	}
	if e.Timestamp, err = decoder.ReadInt64(bin.LE); err != nil {
		return nil, err
	}
	if e.Reserves.VirtualSolReserves, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if e.Reserves.VirtualTokenReserves, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, err
	}

	// real reserves were appended in a later program revision
	for _, field := range []*uint64{&e.Reserves.RealSolReserves, &e.Reserves.RealTokenReserves} {
		if decoder.Remaining() < 8 {
			break
		}
		if *field, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func decodeCompleteEvent(decoder *bin.Decoder) (*CompleteEvent, error) {
	e := &CompleteEvent{}
	var err error
	for _, field := range []*solana.PublicKey{&e.User, &e.Mint, &e.BondingCurve} {
		if *field, err = readPublicKey(decoder); err != nil {
			return nil, err
		}
	}
	if e.Timestamp, err = decoder.ReadInt64(bin.LE); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeSetParamsEvent(decoder *bin.Decoder) (*SetParamsEvent, error) {
	e := &SetParamsEvent{}
	var err error
	if e.FeeRecipient, err = readPublicKey(decoder); err != nil {
		return nil, err
	}
	for _, field := range []*uint64{
		&e.InitialVirtualTokenReserves,
		&e.InitialVirtualSolReserves,
		&e.InitialRealTokenReserves,
		&e.TokenTotalSupply,
		&e.FeeBasisPoints,
	} {
		if *field, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, err
		}
	}
	if decoder.Remaining() >= solana.PublicKeyLength {
		if e.Authority, err = readPublicKey(decoder); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ParseProgramData decodes the base64 payload of a "Program data:" log line and
// tags it by its event discriminator.
func ParseProgramData(payload string) (RawEvent, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return RawEvent{}, fmt.Errorf("invalid program data: %w", err)
	}
	if len(data) < 8 {
		return RawEvent{}, &DecodeError{Account: "event", Length: len(data), Err: ErrTruncatedBuffer}
	}

	var disc [8]byte
	copy(disc[:], data[:8])
	kind, ok := eventDiscriminators[disc]
	if !ok {
		return RawEvent{}, &UnknownEventError{Name: fmt.Sprintf("%x", disc)}
	}
	return RawEvent{Name: string(kind), Data: bytes.Clone(data[8:])}, nil
}

// EventDecoder turns transaction logs into domain events.
type EventDecoder struct {
	logger *zap.Logger
}

func NewEventDecoder(logger *zap.Logger) *EventDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventDecoder{logger: logger.Named("pumpfun_events")}
}

// DecodeLogs decodes every "Program data:" line in order. Lines that are not
// Pump.fun events or fail to decode are logged and skipped.
func (d *EventDecoder) DecodeLogs(logs []string) []Event {
	var out []Event
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}

		raw, err := ParseProgramData(payload)
		if err == nil {
			var event Event
			event, err = DecodeEvent(raw)
			if err == nil {
				out = append(out, event)
				continue
			}
		}

		if errors.Is(err, ErrUnknownEventType) {
			d.logger.Warn("Skipping unknown event type", zap.Error(err))
			continue
		}
		d.logger.Warn("Failed to decode event", zap.Error(err))
	}
	return out
}
