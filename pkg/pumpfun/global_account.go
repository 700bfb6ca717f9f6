// =============================================
// File: pkg/pumpfun/global_account.go
// =============================================
package pumpfun

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// GlobalAccountDiscriminator is sha256("account:Global")[:8].
var GlobalAccountDiscriminator = [8]byte{0xa7, 0xe8, 0xe8, 0xb1, 0xc8, 0x6c, 0x72, 0x7f}

// GlobalAccountMinSize covers every field up to and including the fee basis points.
const GlobalAccountMinSize = 107

// GlobalAccount represents the structure of the PumpFun global account data
type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint16
}

// DecodeGlobalAccount parses the global account buffer. Bytes past the fee field
// belong to newer program revisions and are ignored.
func DecodeGlobalAccount(data []byte) (*GlobalAccount, error) {
	if err := checkAccountHeader("global", data, GlobalAccountMinSize, GlobalAccountDiscriminator); err != nil {
		return nil, err
	}

	account := &GlobalAccount{}
	if err := account.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, &DecodeError{Account: "global", Length: len(data), Err: fmt.Errorf("%w: %v", ErrTruncatedBuffer, err)}
	}

	if account.FeeBasisPoints > BasisPointsDenominator {
		return nil, &DecodeError{
			Account: "global",
			Length:  len(data),
			Err:     fmt.Errorf("%w: fee basis points %d", ErrInvalidField, account.FeeBasisPoints),
		}
	}

	return account, nil
}

// UnmarshalWithDecoder reads the fixed little-endian field sequence.
func (a *GlobalAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, &a.Discriminator); err != nil {
		return err
	}
	if a.Initialized, err = decoder.ReadBool(); err != nil {
		return err
	}
	if a.Authority, err = readPublicKey(decoder); err != nil {
		return err
	}
	if a.FeeRecipient, err = readPublicKey(decoder); err != nil {
		return err
	}
	for _, field := range []*uint64{
		&a.InitialVirtualTokenReserves,
		&a.InitialVirtualSolReserves,
		&a.InitialRealTokenReserves,
		&a.TokenTotalSupply,
	} {
		if *field, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
	}
	a.FeeBasisPoints, err = decoder.ReadUint16(bin.LE)
	return err
}

// checkAccountHeader validates the minimum length and the leading discriminator.
func checkAccountHeader(account string, data []byte, minLen int, want [8]byte) error {
	if len(data) < minLen {
		return &DecodeError{
			Account: account,
			Length:  len(data),
			Err:     fmt.Errorf("%w: need at least %d bytes", ErrTruncatedBuffer, minLen),
		}
	}
	if !bytes.Equal(data[:8], want[:]) {
		return &DecodeError{
			Account: account,
			Length:  len(data),
			Err:     fmt.Errorf("%w: got %x", ErrInvalidDiscriminator, data[:8]),
		}
	}
	return nil
}

func readDiscriminator(decoder *bin.Decoder, out *[8]byte) error {
	raw, err := decoder.ReadNBytes(8)
	if err != nil {
		return err
	}
	copy(out[:], raw)
	return nil
}

func readPublicKey(decoder *bin.Decoder) (solana.PublicKey, error) {
	raw, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func readBorshString(decoder *bin.Decoder) (string, error) {
	length, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return "", err
	}
	if int(length) > decoder.Remaining() {
		return "", fmt.Errorf("string length %d exceeds remaining %d bytes", length, decoder.Remaining())
	}
	raw, err := decoder.ReadNBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
