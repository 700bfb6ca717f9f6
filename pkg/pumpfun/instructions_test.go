package pumpfun

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(nil, zap.NewNop())
	require.NoError(t, err)
	return b
}

func accountKeys(t *testing.T, ix solana.Instruction) []solana.PublicKey {
	t.Helper()
	metas := ix.Accounts()
	keys := make([]solana.PublicKey, len(metas))
	for i, m := range metas {
		keys[i] = m.PublicKey
	}
	return keys
}

func instructionData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestDiscriminators(t *testing.T) {
	tests := []struct {
		preimage string
		got      [8]byte
	}{
		{"global:create", CreateDiscriminator},
		{"global:buy", BuyDiscriminator},
		{"global:sell", SellDiscriminator},
		{"account:Global", GlobalAccountDiscriminator},
		{"account:BondingCurve", BondingCurveDiscriminator},
	}
	for _, tt := range tests {
		sum := sha256.Sum256([]byte(tt.preimage))
		assert.Equal(t, sum[:8], tt.got[:], tt.preimage)
	}
}

func TestBuildBuyInstruction_Standard(t *testing.T) {
	b := newTestBuilder(t)

	ix, err := b.BuildBuyInstruction(BuyParams{
		User:         testUser,
		Mint:         testMint,
		Creator:      testCreator,
		FeeRecipient: testFeeDest,
		Mode:         ModeStandard,
		Amount:       34_612_903_225_806,
		MaxSolCost:   1_050_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, PumpFunProgramID, ix.ProgramID())

	bondingCurve, _, _ := BondingCurvePDA(PumpFunProgramID, testMint)
	assocCurve, _ := AssociatedTokenAddress(bondingCurve, testMint, TokenProgramID)
	userATA, _ := AssociatedTokenAddress(testUser, testMint, TokenProgramID)
	creatorVault, _, _ := CreatorVaultPDA(PumpFunProgramID, testCreator)
	userVolume, _, _ := UserVolumeAccumulatorPDA(PumpFunProgramID, testUser)

	assert.Equal(t, []solana.PublicKey{
		PumpFunGlobal,
		testFeeDest,
		testMint,
		bondingCurve,
		assocCurve,
		userATA,
		testUser,
		solana.SystemProgramID,
		TokenProgramID,
		creatorVault,
		PumpFunEventAuth,
		PumpFunProgramID,
		GlobalVolumeAccumulator,
		userVolume,
		FeeConfig,
		FeeProgramID,
	}, accountKeys(t, ix))

	metas := ix.Accounts()
	assert.True(t, metas[6].IsSigner)
	assert.True(t, metas[6].IsWritable)
	assert.True(t, metas[1].IsWritable)
	assert.False(t, metas[0].IsWritable)

	data := instructionData(t, ix)
	require.Len(t, data, 25)
	assert.Equal(t, BuyDiscriminator[:], data[:8])
	assert.Equal(t, uint64(34_612_903_225_806), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_050_000_000), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, byte(1), data[24])
}

func TestBuildBuyInstruction_Mayhem(t *testing.T) {
	b := newTestBuilder(t)
	trackVolume := false

	ix, err := b.BuildBuyInstruction(BuyParams{
		User:         testUser,
		Mint:         testMint,
		Creator:      testCreator,
		FeeRecipient: testFeeDest,
		Mode:         ModeMayhem,
		Amount:       1,
		MaxSolCost:   2,
		TrackVolume:  &trackVolume,
	})
	require.NoError(t, err)

	keys := accountKeys(t, ix)
	require.Len(t, keys, 14)
	assert.Equal(t, MayhemFeeRecipient, keys[1])
	assert.Equal(t, Token2022ProgramID, keys[8])
	assert.NotContains(t, keys, GlobalVolumeAccumulator)
	assert.NotContains(t, keys, TokenProgramID)
	assert.NotContains(t, keys, testFeeDest)

	userATA, _ := AssociatedTokenAddress(testUser, testMint, Token2022ProgramID)
	assert.Equal(t, userATA, keys[5])
	assert.Equal(t, []solana.PublicKey{FeeConfig, FeeProgramID}, keys[12:])

	assert.Equal(t, byte(0), instructionData(t, ix)[24])
}

func TestBuildSellInstruction(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		mode         RoutingMode
		tokenProgram solana.PublicKey
		feeRecipient solana.PublicKey
	}{
		{ModeStandard, TokenProgramID, testFeeDest},
		{ModeMayhem, Token2022ProgramID, MayhemFeeRecipient},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			ix, err := b.BuildSellInstruction(SellParams{
				User:         testUser,
				Mint:         testMint,
				Creator:      testCreator,
				FeeRecipient: testFeeDest,
				Mode:         tt.mode,
				Amount:       1_000_000,
				MinSolOutput: 25,
			})
			require.NoError(t, err)

			creatorVault, _, _ := CreatorVaultPDA(PumpFunProgramID, testCreator)
			keys := accountKeys(t, ix)
			require.Len(t, keys, 14)
			assert.Equal(t, tt.feeRecipient, keys[1])
			assert.Equal(t, creatorVault, keys[8])
			assert.Equal(t, tt.tokenProgram, keys[9])
			assert.NotContains(t, keys, GlobalVolumeAccumulator)

			data := instructionData(t, ix)
			require.Len(t, data, 24)
			assert.Equal(t, SellDiscriminator[:], data[:8])
			assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[8:16]))
			assert.Equal(t, uint64(25), binary.LittleEndian.Uint64(data[16:24]))
		})
	}
}

func TestBuildCreateInstruction(t *testing.T) {
	b := newTestBuilder(t)

	ix, err := b.BuildCreateInstruction(CreateParams{
		Mint:   testMint,
		User:   testUser,
		Name:   "Pump",
		Symbol: "PMP",
		URI:    "ipfs://x",
	})
	require.NoError(t, err)

	metas := ix.Accounts()
	require.Len(t, metas, 14)
	assert.Equal(t, testMint, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, testUser, metas[7].PublicKey)
	assert.True(t, metas[7].IsSigner)
	assert.Equal(t, MplTokenMetadataProgramID, metas[5].PublicKey)
	assert.Equal(t, TokenProgramID, metas[9].PublicKey)
	assert.Equal(t, SysvarRentPubkey, metas[11].PublicKey)

	data := instructionData(t, ix)
	assert.Equal(t, CreateDiscriminator[:], data[:8])

	off := 8
	for _, want := range []string{"Pump", "PMP", "ipfs://x"} {
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		assert.Equal(t, want, string(data[off:off+n]))
		off += n
	}
	// creator defaults to the user
	assert.Equal(t, testUser[:], data[off:off+32])
	assert.Len(t, data, off+32)
}

type stubChecker struct {
	exists bool
	err    error
	calls  int
}

func (s *stubChecker) AccountExists(context.Context, solana.PublicKey) (bool, error) {
	s.calls++
	return s.exists, s.err
}

func TestBuyInstructions_ATAPrepend(t *testing.T) {
	b := newTestBuilder(t)
	params := BuyParams{User: testUser, Mint: testMint, Creator: testCreator, FeeRecipient: testFeeDest, Amount: 1, MaxSolCost: 1}

	tests := []struct {
		name    string
		checker AccountChecker
		force   bool
		want    int
	}{
		{"existing account", &stubChecker{exists: true}, false, 1},
		{"missing account", &stubChecker{exists: false}, false, 2},
		{"forced", &stubChecker{exists: true}, true, 2},
		{"nil checker", nil, false, 1},
		{"nil checker forced", nil, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params
			p.ForceCreateATA = tt.force
			ixs, err := b.BuyInstructions(context.Background(), tt.checker, p)
			require.NoError(t, err)
			require.Len(t, ixs, tt.want)

			if tt.want == 2 {
				assert.Equal(t, AssociatedTokenProgramID, ixs[0].ProgramID())
				assert.Equal(t, []byte{1}, instructionData(t, ixs[0]))
			}
			assert.Equal(t, PumpFunProgramID, ixs[len(ixs)-1].ProgramID())
		})
	}

	checkErr := errors.New("rpc down")
	_, err := b.BuyInstructions(context.Background(), &stubChecker{err: checkErr}, params)
	assert.ErrorIs(t, err, checkErr)
}

func TestBuyInstructions_MayhemATAUsesToken2022(t *testing.T) {
	b := newTestBuilder(t)
	ixs, err := b.BuyInstructions(context.Background(), nil, BuyParams{
		User: testUser, Mint: testMint, Creator: testCreator, Mode: ModeMayhem, ForceCreateATA: true,
	})
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	keys := accountKeys(t, ixs[0])
	wantATA, _ := AssociatedTokenAddress(testUser, testMint, Token2022ProgramID)
	assert.Equal(t, wantATA, keys[1])
	assert.Equal(t, Token2022ProgramID, keys[5])
}
