// =============================
// File: pkg/pumpfun/errors.go
// =============================
package pumpfun

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDiscriminator = errors.New("invalid discriminator")
	ErrTruncatedBuffer      = errors.New("truncated buffer")
	ErrInvalidField         = errors.New("invalid field value")

	// ErrCurveComplete is returned for any price computation against a migrated curve.
	ErrCurveComplete        = errors.New("bonding curve is complete")
	ErrInsufficientReserves = errors.New("insufficient curve reserves")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")

	ErrNoValidAddress   = errors.New("no valid program address")
	ErrUnknownEventType = errors.New("unknown event type")
)

// DecodeError describes a rejected account buffer.
type DecodeError struct {
	Account string
	Length  int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%d bytes): %v", e.Account, e.Length, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnknownEventError is reported for event names the decoder has no mapping for.
// It is not fatal: the program may add new event kinds at any time.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Name)
}

func (e *UnknownEventError) Unwrap() error {
	return ErrUnknownEventType
}

// IsDecodeError reports whether err came from rejecting an account or event buffer.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
