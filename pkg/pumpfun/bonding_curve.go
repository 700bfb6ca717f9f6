// ==============================================
// File: pkg/pumpfun/bonding_curve.go
// ==============================================
package pumpfun

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// BondingCurveDiscriminator is sha256("account:BondingCurve")[:8].
var BondingCurveDiscriminator = [8]byte{0x17, 0xb7, 0xf8, 0x37, 0x60, 0xd8, 0xac, 0x60}

// BondingCurveMinSize is the legacy layout without the trailing mode byte.
const BondingCurveMinSize = 81

// RoutingMode selects which token program and fee recipient a curve trades through.
type RoutingMode uint8

const (
	ModeStandard RoutingMode = iota
	ModeMayhem
)

func (m RoutingMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeMayhem:
		return "mayhem"
	default:
		return fmt.Sprintf("RoutingMode(%d)", uint8(m))
	}
}

// BondingCurve holds the per-mint curve state.
type BondingCurve struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
	Mode                 RoutingMode
}

// DecodeBondingCurve parses a bonding curve account buffer.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	if err := checkAccountHeader("bonding_curve", data, BondingCurveMinSize, BondingCurveDiscriminator); err != nil {
		return nil, err
	}

	curve := &BondingCurve{}
	if err := curve.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, &DecodeError{Account: "bonding_curve", Length: len(data), Err: fmt.Errorf("%w: %v", ErrTruncatedBuffer, err)}
	}
	return curve, nil
}

// UnmarshalWithDecoder reads the fixed prefix, then fills optional trailing fields.
func (c *BondingCurve) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, &c.Discriminator); err != nil {
		return err
	}
	for _, field := range []*uint64{
		&c.VirtualTokenReserves,
		&c.VirtualSolReserves,
		&c.RealTokenReserves,
		&c.RealSolReserves,
		&c.TokenTotalSupply,
	} {
		if *field, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
	}
	if c.Complete, err = decoder.ReadBool(); err != nil {
		return err
	}
	if c.Creator, err = readPublicKey(decoder); err != nil {
		return err
	}
	return c.readTrailing(decoder)
}

// readTrailing applies defaults for fields that legacy buffers do not carry.
func (c *BondingCurve) readTrailing(decoder *bin.Decoder) error {
	c.Mode = ModeStandard
	if decoder.Remaining() == 0 {
		return nil
	}

	flag, err := decoder.ReadByte()
	if err != nil {
		return err
	}
	if flag != 0 {
		c.Mode = ModeMayhem
	}
	return nil
}

// IsMayhem reports whether the curve routes through Token-2022 and the mayhem fee recipient.
func (c *BondingCurve) IsMayhem() bool {
	return c.Mode == ModeMayhem
}
