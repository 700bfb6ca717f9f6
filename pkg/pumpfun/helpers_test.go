package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

const (
	testInitialVirtualTokenReserves = uint64(1_073_000_000_000_000)
	testInitialVirtualSolReserves   = uint64(30_000_000_000)
	testInitialRealTokenReserves    = uint64(793_100_000_000_000)
	testTokenTotalSupply            = uint64(1_000_000_000_000_000)
)

var (
	testMint    = solana.MustPublicKeyFromBase58("7Y5UnkniiBZYmBt2dMtX1b3KLG7TM6V4SeGBgdoxQoG1")
	testUser    = solana.MustPublicKeyFromBase58("Ar9jb5nXLind51VTFzJr4hUoY6d6xNmwmqeuG7XQi9e3")
	testCreator = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	testFeeDest = solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV")
)

func newTestGlobal() *GlobalAccount {
	return &GlobalAccount{
		Discriminator:               GlobalAccountDiscriminator,
		Initialized:                 true,
		Authority:                   testCreator,
		FeeRecipient:                testFeeDest,
		InitialVirtualTokenReserves: testInitialVirtualTokenReserves,
		InitialVirtualSolReserves:   testInitialVirtualSolReserves,
		InitialRealTokenReserves:    testInitialRealTokenReserves,
		TokenTotalSupply:            testTokenTotalSupply,
		FeeBasisPoints:              100,
	}
}

func newTestCurve() *BondingCurve {
	return &BondingCurve{
		Discriminator:        BondingCurveDiscriminator,
		VirtualTokenReserves: testInitialVirtualTokenReserves,
		VirtualSolReserves:   testInitialVirtualSolReserves,
		RealTokenReserves:    testInitialRealTokenReserves,
		RealSolReserves:      0,
		TokenTotalSupply:     testTokenTotalSupply,
		Creator:              testCreator,
	}
}

// encodeGlobal lays the account out the way the deployed program does: fee as u64
// followed by fields this package does not read.
func encodeGlobal(g *GlobalAccount) []byte {
	buf := make([]byte, 0, 160)
	buf = append(buf, g.Discriminator[:]...)
	buf = append(buf, boolByte(g.Initialized))
	buf = append(buf, g.Authority[:]...)
	buf = append(buf, g.FeeRecipient[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, g.InitialVirtualTokenReserves)
	buf = binary.LittleEndian.AppendUint64(buf, g.InitialVirtualSolReserves)
	buf = binary.LittleEndian.AppendUint64(buf, g.InitialRealTokenReserves)
	buf = binary.LittleEndian.AppendUint64(buf, g.TokenTotalSupply)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(g.FeeBasisPoints))
	buf = append(buf, testCreator[:]...)
	return buf
}

// encodeCurve produces the legacy 81-byte layout, plus the mode byte when withMode is set.
func encodeCurve(c *BondingCurve, withMode bool) []byte {
	buf := make([]byte, 0, 82)
	buf = append(buf, c.Discriminator[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, c.VirtualTokenReserves)
	buf = binary.LittleEndian.AppendUint64(buf, c.VirtualSolReserves)
	buf = binary.LittleEndian.AppendUint64(buf, c.RealTokenReserves)
	buf = binary.LittleEndian.AppendUint64(buf, c.RealSolReserves)
	buf = binary.LittleEndian.AppendUint64(buf, c.TokenTotalSupply)
	buf = append(buf, boolByte(c.Complete))
	buf = append(buf, c.Creator[:]...)
	if withMode {
		buf = append(buf, byte(c.Mode))
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
