// =============================
// File: pkg/pumpfun/accounts.go
// =============================
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountFetcher returns the raw data of an on-chain account.
// Implementations report a missing account with an error.
type AccountFetcher interface {
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// AccountChecker reports whether an account exists.
type AccountChecker interface {
	AccountExists(ctx context.Context, address solana.PublicKey) (bool, error)
}

// FetchGlobalAccount получает и декодирует глобальный аккаунт программы.
func FetchGlobalAccount(ctx context.Context, fetcher AccountFetcher, cfg *Config) (*GlobalAccount, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	data, err := fetcher.GetAccountData(ctx, cfg.Global)
	if err != nil {
		return nil, fmt.Errorf("failed to get global account: %w", err)
	}

	global, err := DecodeGlobalAccount(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode global account %s: %w", cfg.Global, err)
	}
	return global, nil
}

// FetchBondingCurve получает и декодирует bonding curve для минта.
func FetchBondingCurve(ctx context.Context, fetcher AccountFetcher, cfg *Config, mint solana.PublicKey) (*BondingCurve, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	address, _, err := BondingCurvePDA(cfg.ContractAddress, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	data, err := fetcher.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve account %s: %w", address, err)
	}

	curve, err := DecodeBondingCurve(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bonding curve %s: %w", address, err)
	}
	return curve, nil
}
