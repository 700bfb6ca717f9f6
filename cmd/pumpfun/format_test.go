package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/config"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/events"
	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

var (
	testMint = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	testUser = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals int32
		want     uint64
		wantErr  bool
	}{
		{"1", solDecimals, 1_000_000_000, false},
		{"0.5", solDecimals, 500_000_000, false},
		{"0.0000000019", solDecimals, 1, false},
		{"1000000", pumpfun.DefaultDecimals, 1_000_000_000_000, false},
		{"-1", solDecimals, 0, true},
		{"abc", solDecimals, 0, true},
		{"99999999999999999999", solDecimals, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseUnits(tt.in, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.05 SOL", formatSol(1_050_000_000))
	assert.Equal(t, "0 SOL", formatSol(0))
	assert.Equal(t, "34612903.225806", formatTokens(34_612_903_225_806))
}

func TestParsePublicKey(t *testing.T) {
	_, err := parsePublicKey("mint", "")
	assert.ErrorContains(t, err, "-mint is required")

	_, err = parsePublicKey("mint", "not-a-key")
	assert.Error(t, err)

	key, err := parsePublicKey("mint", testMint.String())
	require.NoError(t, err)
	assert.Equal(t, testMint, key)
}

func TestQuoteRows(t *testing.T) {
	rows := quoteRows(&pumpfun.Quote{Side: pumpfun.SideSell, Input: 1, Output: 2, Fee: 3, Bound: 4}, nil)
	require.Len(t, rows, 4)
	assert.Equal(t, "fee", rows[2].Key)
	assert.Equal(t, "0.000000003 SOL", rows[2].Value)
}

func TestInstructionRows(t *testing.T) {
	ix := solana.NewInstruction(pumpfun.PumpFunProgramID, solana.AccountMetaSlice{
		{PublicKey: testUser, IsSigner: true, IsWritable: true},
		{PublicKey: testMint},
	}, []byte{1, 2, 3})

	rows, err := instructionRows(ix)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, pumpfun.PumpFunProgramID.String(), rows[0].Value)
	assert.Equal(t, base58.Encode([]byte{1, 2, 3}), rows[1].Value)
	assert.Equal(t, "#00 sw", rows[2].Key)
	assert.Equal(t, "#01 ", rows[3].Key)
}

func TestDiscriminatorRows(t *testing.T) {
	rows := discriminatorRows()
	require.NotEmpty(t, rows)
	assert.Contains(t, rows[1].Value, "66063d1201daebea")
}

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	var out bytes.Buffer
	a, err := newApp(cfg, zap.NewNop(), &out)
	require.NoError(t, err)
	return a, &out
}

func TestRenderEvent(t *testing.T) {
	a, _ := testApp(t)
	trade := events.NewProgramEvent(9, solana.Signature{}, &pumpfun.TradeEvent{
		Mint:        testMint,
		SolAmount:   1_000_000_000,
		TokenAmount: 34_612_903_225_806,
		IsBuy:       true,
		User:        testUser,
	}, time.Now())

	line, ok := a.renderEvent(trade, solana.PublicKey{})
	require.True(t, ok)
	assert.Contains(t, line, "BUY")
	assert.Contains(t, line, "34612903.225806")
	assert.Contains(t, line, "1 SOL")

	_, ok = a.renderEvent(trade, testUser)
	assert.False(t, ok)

	complete := events.NewProgramEvent(10, solana.Signature{}, &pumpfun.CompleteEvent{Mint: testMint, User: testUser}, time.Now())
	line, ok = a.renderEvent(complete, testMint)
	require.True(t, ok)
	assert.Contains(t, line, "curve complete")
}

func TestRunDerive(t *testing.T) {
	a, out := testApp(t)
	err := runDerive(context.Background(), a, []string{"-mint", testMint.String(), "-user", testUser.String(), "-creator", testUser.String()})
	require.NoError(t, err)

	curve, _, err := pumpfun.BondingCurvePDA(pumpfun.PumpFunProgramID, testMint)
	require.NoError(t, err)
	assert.Contains(t, out.String(), curve.String())
	assert.Contains(t, out.String(), "user volume")
	assert.Contains(t, out.String(), pumpfun.MayhemProgramID.String())
	assert.Contains(t, out.String(), "Discriminators")
}

func TestRunDerive_RequiresMint(t *testing.T) {
	a, _ := testApp(t)
	assert.Error(t, runDerive(context.Background(), a, nil))
}
