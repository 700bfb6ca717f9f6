// cmd/pumpfun/format.go
package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/ui/style"
	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

const solDecimals = 9

var errNegativeAmount = errors.New("amount must not be negative")

// parseUnits converts a decimal string into integer base units with the given precision.
// Digits beyond the precision are truncated.
func parseUnits(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, errNegativeAmount
	}
	units := d.Shift(decimals).Truncate(0).BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return units.Uint64(), nil
}

// formatUnits renders integer base units as a decimal string.
func formatUnits(units uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals).String()
}

func formatSol(lamports uint64) string {
	return formatUnits(lamports, solDecimals) + " SOL"
}

func formatTokens(amount uint64) string {
	return formatUnits(amount, pumpfun.DefaultDecimals)
}

func parsePublicKey(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("-%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return key, nil
}

func quoteRows(q *pumpfun.Quote, curve *pumpfun.BondingCurve) []style.Row {
	var rows []style.Row
	switch q.Side {
	case pumpfun.SideBuy:
		rows = []style.Row{
			{Key: "sol in", Value: formatSol(q.Input)},
			{Key: "tokens out", Value: formatTokens(q.Output)},
			{Key: "max sol cost", Value: formatSol(q.Bound)},
		}
	case pumpfun.SideSell:
		rows = []style.Row{
			{Key: "tokens in", Value: formatTokens(q.Input)},
			{Key: "sol out", Value: formatSol(q.Output)},
			{Key: "fee", Value: formatSol(q.Fee)},
			{Key: "min sol output", Value: formatSol(q.Bound)},
		}
	}
	if curve != nil {
		rows = append(rows,
			style.Row{Key: "mode", Value: curve.Mode.String()},
			style.Row{Key: "spot price", Value: curve.SpotPrice().StringFixed(12) + " SOL"},
		)
		if mcap, err := curve.MarketCapSol(); err == nil {
			rows = append(rows, style.Row{Key: "market cap", Value: formatSol(mcap)})
		}
	}
	return rows
}

func instructionRows(ix solana.Instruction) ([]style.Row, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode instruction data: %w", err)
	}

	rows := []style.Row{
		{Key: "program", Value: ix.ProgramID().String()},
		{Key: "data", Value: base58.Encode(data)},
	}
	for i, meta := range ix.Accounts() {
		flags := ""
		if meta.IsSigner {
			flags += "s"
		}
		if meta.IsWritable {
			flags += "w"
		}
		rows = append(rows, style.Row{
			Key:   fmt.Sprintf("#%02d %s", i, flags),
			Value: meta.PublicKey.String(),
		})
	}
	return rows, nil
}

func discriminatorRows() []style.Row {
	named := []struct {
		name string
		disc [8]byte
	}{
		{"create", pumpfun.CreateDiscriminator},
		{"buy", pumpfun.BuyDiscriminator},
		{"sell", pumpfun.SellDiscriminator},
		{"Global", pumpfun.GlobalAccountDiscriminator},
		{"BondingCurve", pumpfun.BondingCurveDiscriminator},
	}
	rows := make([]style.Row, 0, len(named))
	for _, n := range named {
		rows = append(rows, style.Row{
			Key:   n.name,
			Value: fmt.Sprintf("%x (%s)", n.disc[:], base58.Encode(n.disc[:])),
		})
	}
	return rows
}
