// =============================
// File: pkg/pumpfun/pda.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

// DeriveAddress finds the canonical program-derived address for seeds under programID.
// Bumps are tried from 255 down to 0; the bump is appended as the last seed and the
// first candidate that falls off the ed25519 curve wins.
func DeriveAddress(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	if len(seeds)+1 > maxSeeds {
		return solana.PublicKey{}, 0, fmt.Errorf("too many seeds: %d", len(seeds))
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return solana.PublicKey{}, 0, fmt.Errorf("seed %d exceeds %d bytes", i, maxSeedLength)
		}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		address, err := solana.CreateProgramAddress(withBump, programID)
		if err == nil {
			return address, uint8(bump), nil
		}
	}

	return solana.PublicKey{}, 0, fmt.Errorf("%w for program %s", ErrNoValidAddress, programID)
}

// GlobalPDA derives the singleton global configuration account.
func GlobalPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(programID, []byte(GlobalAccountSeed))
}

// MintAuthorityPDA derives the authority the program mints new tokens with.
func MintAuthorityPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(programID, []byte(MintAuthoritySeed))
}

// BondingCurvePDA derives the curve state account of a mint.
func BondingCurvePDA(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(programID, []byte(BondingCurveSeed), mint.Bytes())
}

// MetadataPDA derives the Metaplex metadata account of a mint.
func MetadataPDA(metadataProgram, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(metadataProgram, []byte(MetadataSeed), metadataProgram.Bytes(), mint.Bytes())
}

// CreatorVaultPDA derives the vault collecting creator fees.
func CreatorVaultPDA(programID, creator solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(programID, []byte(CreatorVaultSeed), creator.Bytes())
}

// UserVolumeAccumulatorPDA derives the per-user volume tracking account.
func UserVolumeAccumulatorPDA(programID, user solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(programID, []byte(UserVolumeAccumulatorSeed), user.Bytes())
}

// AssociatedTokenAddress derives the associated token account of owner for mint.
// Unlike solana.FindAssociatedTokenAddress the token program is explicit, which
// mayhem-mode (Token-2022) mints require.
func AssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := DeriveAddress(AssociatedTokenProgramID, owner.Bytes(), tokenProgram.Bytes(), mint.Bytes())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return ata, nil
}

// curveAccounts are the addresses every trade against one mint needs.
type curveAccounts struct {
	bondingCurve           solana.PublicKey
	associatedBondingCurve solana.PublicKey
	associatedUser         solana.PublicKey
	creatorVault           solana.PublicKey
}

// deriveCurveAccounts вычисляет адреса bonding curve, её ATA, ATA пользователя и creator vault.
func deriveCurveAccounts(programID, mint, user, creator, tokenProgram solana.PublicKey) (curveAccounts, error) {
	var out curveAccounts
	var err error

	out.bondingCurve, _, err = BondingCurvePDA(programID, mint)
	if err != nil {
		return out, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	out.associatedBondingCurve, err = AssociatedTokenAddress(out.bondingCurve, mint, tokenProgram)
	if err != nil {
		return out, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}

	out.associatedUser, err = AssociatedTokenAddress(user, mint, tokenProgram)
	if err != nil {
		return out, fmt.Errorf("failed to derive user token account: %w", err)
	}

	out.creatorVault, _, err = CreatorVaultPDA(programID, creator)
	if err != nil {
		return out, fmt.Errorf("failed to derive creator vault: %w", err)
	}

	return out, nil
}
