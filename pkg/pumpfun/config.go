// =============================
// File: pkg/pumpfun/config.go
// =============================
package pumpfun

import (
	"github.com/gagliardetto/solana-go"
)

// Known Pump.fun protocol addresses
var (
	// Program ID for Pump.fun protocol
	PumpFunProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// Event authority for the Pump.fun protocol
	PumpFunEventAuth = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	// Global account, equal to GlobalPDA(PumpFunProgramID)
	PumpFunGlobal = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")

	GlobalVolumeAccumulator = solana.MustPublicKeyFromBase58("Hq2wp8uJ9jCPsYgNHex8RtqdvMPfVGoYwjvF1ATiwn2Y")
	FeeConfig               = solana.MustPublicKeyFromBase58("8Wf5TiAheLUqBrKXeYg2JtAFFMWtKdG2BSFgqUcPVwTt")
	FeeProgramID            = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")

	// Mayhem mode routes fees to a fixed recipient and mints under Token-2022
	MayhemProgramID    = solana.MustPublicKeyFromBase58("MAyhSmzXzV1pTf7LsNkrNwkWKTo4ougAJ1PPg47MD4e")
	MayhemFeeRecipient = solana.MustPublicKeyFromBase58("GesfTA3X2arioaHp8bbKdjG9vJtskViWACZoYvxp4twS")

	// Metaplex token metadata program
	MplTokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

	TokenProgramID           = solana.TokenProgramID
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
	SysvarRentPubkey         = solana.SysVarRentPubkey
)

// PDA seeds used by the program
const (
	GlobalAccountSeed         = "global"
	MintAuthoritySeed         = "mint-authority"
	BondingCurveSeed          = "bonding-curve"
	MetadataSeed              = "metadata"
	CreatorVaultSeed          = "creator-vault"
	UserVolumeAccumulatorSeed = "user_volume_accumulator"
)

const (
	// DefaultDecimals is the mint precision of every Pump.fun token
	DefaultDecimals = 6
	// DefaultSlippageBasisPoints is 5%
	DefaultSlippageBasisPoints = 500

	BasisPointsDenominator = 10_000
	LamportsPerSol         = 1_000_000_000
)

// Config holds the program addresses the builder and fetch helpers route through.
// A Config is treated as read-only once handed to a Builder.
type Config struct {
	ContractAddress         solana.PublicKey
	Global                  solana.PublicKey
	EventAuthority          solana.PublicKey
	GlobalVolumeAccumulator solana.PublicKey
	FeeConfig               solana.PublicKey
	FeeProgram              solana.PublicKey
	MayhemFeeRecipient      solana.PublicKey
	MetadataProgram         solana.PublicKey
}

// DefaultConfig returns the mainnet configuration of the Pump.fun program.
func DefaultConfig() *Config {
	return &Config{
		ContractAddress:         PumpFunProgramID,
		Global:                  PumpFunGlobal,
		EventAuthority:          PumpFunEventAuth,
		GlobalVolumeAccumulator: GlobalVolumeAccumulator,
		FeeConfig:               FeeConfig,
		FeeProgram:              FeeProgramID,
		MayhemFeeRecipient:      MayhemFeeRecipient,
		MetadataProgram:         MplTokenMetadataProgramID,
	}
}

// Normalize returns a copy of cfg with every zero address filled from DefaultConfig.
// A custom ContractAddress re-derives the global account instead of using the mainnet one.
func (cfg *Config) Normalize() (*Config, error) {
	def := DefaultConfig()
	if cfg == nil {
		return def, nil
	}

	out := *cfg
	if out.ContractAddress.IsZero() {
		out.ContractAddress = def.ContractAddress
	}
	if out.Global.IsZero() {
		if out.ContractAddress.Equals(PumpFunProgramID) {
			out.Global = def.Global
		} else {
			global, _, err := GlobalPDA(out.ContractAddress)
			if err != nil {
				return nil, err
			}
			out.Global = global
		}
	}
	if out.EventAuthority.IsZero() {
		out.EventAuthority = def.EventAuthority
	}
	if out.GlobalVolumeAccumulator.IsZero() {
		out.GlobalVolumeAccumulator = def.GlobalVolumeAccumulator
	}
	if out.FeeConfig.IsZero() {
		out.FeeConfig = def.FeeConfig
	}
	if out.FeeProgram.IsZero() {
		out.FeeProgram = def.FeeProgram
	}
	if out.MayhemFeeRecipient.IsZero() {
		out.MayhemFeeRecipient = def.MayhemFeeRecipient
	}
	if out.MetadataProgram.IsZero() {
		out.MetadataProgram = def.MetadataProgram
	}
	return &out, nil
}
