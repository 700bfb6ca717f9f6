// ==============================================
// File: pkg/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"bytes"
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Instruction discriminators, sha256("global:<name>")[:8].
var (
	CreateDiscriminator = [8]byte{0x18, 0x1e, 0xc8, 0x28, 0x05, 0x1c, 0x07, 0x77}
	BuyDiscriminator    = [8]byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	SellDiscriminator   = [8]byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// CreateParams describes a new token launch.
type CreateParams struct {
	Mint   solana.PublicKey // new mint keypair's public key, signs the transaction
	User   solana.PublicKey // payer
	Name   string
	Symbol string
	URI    string
	// Creator receives creator fees; zero means User.
	Creator solana.PublicKey
}

// BuyParams describes a buy of Amount tokens paying at most MaxSolCost lamports.
type BuyParams struct {
	User         solana.PublicKey
	Mint         solana.PublicKey
	Creator      solana.PublicKey // bonding curve creator, selects the creator vault
	FeeRecipient solana.PublicKey // global fee recipient; ignored in mayhem mode
	Mode         RoutingMode
	Amount       uint64
	MaxSolCost   uint64
	// TrackVolume is encoded as the trailing option byte; nil means true.
	TrackVolume    *bool
	ForceCreateATA bool
}

// SellParams describes a sale of Amount tokens for at least MinSolOutput lamports.
type SellParams struct {
	User         solana.PublicKey
	Mint         solana.PublicKey
	Creator      solana.PublicKey
	FeeRecipient solana.PublicKey
	Mode         RoutingMode
	Amount       uint64
	MinSolOutput uint64
}

// routing is the account set a routing mode resolves to.
type routing struct {
	mode               RoutingMode
	tokenProgram       solana.PublicKey
	feeRecipient       solana.PublicKey
	volumeAccumulators bool
}

// Builder assembles Pump.fun instructions. It holds no mutable state.
type Builder struct {
	cfg    *Config
	logger *zap.Logger
}

// NewBuilder creates a Builder over cfg; nil or partial configs are filled from DefaultConfig.
func NewBuilder(cfg *Config, logger *zap.Logger) (*Builder, error) {
	normalized, err := cfg.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid pumpfun config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{cfg: normalized, logger: logger.Named("pumpfun_builder")}, nil
}

// Config returns the program configuration the builder routes through.
func (b *Builder) Config() Config {
	return *b.cfg
}

// routingFor is the only place standard and mayhem account sets diverge.
func (b *Builder) routingFor(mode RoutingMode, feeRecipient solana.PublicKey) routing {
	if mode == ModeMayhem {
		return routing{
			mode:         ModeMayhem,
			tokenProgram: Token2022ProgramID,
			feeRecipient: b.cfg.MayhemFeeRecipient,
		}
	}
	return routing{
		mode:               ModeStandard,
		tokenProgram:       TokenProgramID,
		feeRecipient:       feeRecipient,
		volumeAccumulators: true,
	}
}

// BuildCreateInstruction builds the token launch instruction. Launches always use standard routing.
func (b *Builder) BuildCreateInstruction(p CreateParams) (solana.Instruction, error) {
	programID := b.cfg.ContractAddress
	creator := p.Creator
	if creator.IsZero() {
		creator = p.User
	}

	mintAuthority, _, err := MintAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive mint authority: %w", err)
	}
	bondingCurve, _, err := BondingCurvePDA(programID, p.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	associatedBondingCurve, err := AssociatedTokenAddress(bondingCurve, p.Mint, TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	metadata, _, err := MetadataPDA(b.cfg.MetadataProgram, p.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata account: %w", err)
	}

	data, err := encodeCreateArgs(p.Name, p.Symbol, p.URI, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: p.Mint, IsSigner: true, IsWritable: true},
		{PublicKey: mintAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: b.cfg.Global, IsSigner: false, IsWritable: false},
		{PublicKey: b.cfg.MetadataProgram, IsSigner: false, IsWritable: false},
		{PublicKey: metadata, IsSigner: false, IsWritable: true},
		{PublicKey: p.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: SysvarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: b.cfg.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: programID, IsSigner: false, IsWritable: false},
	}

	b.logger.Debug("Built create instruction",
		zap.String("mint", p.Mint.String()),
		zap.String("bonding_curve", bondingCurve.String()),
		zap.String("creator", creator.String()))

	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildBuyInstruction builds a buy instruction routed by p.Mode.
func (b *Builder) BuildBuyInstruction(p BuyParams) (solana.Instruction, error) {
	programID := b.cfg.ContractAddress
	route := b.routingFor(p.Mode, p.FeeRecipient)

	derived, err := deriveCurveAccounts(programID, p.Mint, p.User, p.Creator, route.tokenProgram)
	if err != nil {
		return nil, err
	}

	trackVolume := true
	if p.TrackVolume != nil {
		trackVolume = *p.TrackVolume
	}
	data, err := encodeTradeArgs(BuyDiscriminator, p.Amount, p.MaxSolCost, &trackVolume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode buy args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: b.cfg.Global, IsSigner: false, IsWritable: false},
		{PublicKey: route.feeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: p.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: derived.bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: derived.associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: derived.associatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: p.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: route.tokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: derived.creatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: b.cfg.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: programID, IsSigner: false, IsWritable: false},
	}

	if route.volumeAccumulators {
		userVolume, _, err := UserVolumeAccumulatorPDA(programID, p.User)
		if err != nil {
			return nil, fmt.Errorf("failed to derive user volume accumulator: %w", err)
		}
		accounts = append(accounts,
			&solana.AccountMeta{PublicKey: b.cfg.GlobalVolumeAccumulator, IsSigner: false, IsWritable: true},
			&solana.AccountMeta{PublicKey: userVolume, IsSigner: false, IsWritable: true},
		)
	}

	accounts = append(accounts,
		&solana.AccountMeta{PublicKey: b.cfg.FeeConfig, IsSigner: false, IsWritable: false},
		&solana.AccountMeta{PublicKey: b.cfg.FeeProgram, IsSigner: false, IsWritable: false},
	)

	b.logger.Debug("Built buy instruction",
		zap.String("mint", p.Mint.String()),
		zap.Stringer("mode", route.mode),
		zap.Uint64("amount", p.Amount),
		zap.Uint64("max_sol_cost", p.MaxSolCost))

	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildSellInstruction builds a sell instruction routed by p.Mode.
// The deployed program expects the creator vault before the token program here.
func (b *Builder) BuildSellInstruction(p SellParams) (solana.Instruction, error) {
	programID := b.cfg.ContractAddress
	route := b.routingFor(p.Mode, p.FeeRecipient)

	derived, err := deriveCurveAccounts(programID, p.Mint, p.User, p.Creator, route.tokenProgram)
	if err != nil {
		return nil, err
	}

	data, err := encodeTradeArgs(SellDiscriminator, p.Amount, p.MinSolOutput, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sell args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: b.cfg.Global, IsSigner: false, IsWritable: false},
		{PublicKey: route.feeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: p.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: derived.bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: derived.associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: derived.associatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: p.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: derived.creatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: route.tokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: b.cfg.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: programID, IsSigner: false, IsWritable: false},
		{PublicKey: b.cfg.FeeConfig, IsSigner: false, IsWritable: false},
		{PublicKey: b.cfg.FeeProgram, IsSigner: false, IsWritable: false},
	}

	b.logger.Debug("Built sell instruction",
		zap.String("mint", p.Mint.String()),
		zap.Stringer("mode", route.mode),
		zap.Uint64("amount", p.Amount),
		zap.Uint64("min_sol_output", p.MinSolOutput))

	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildCreateATAIdempotentInstruction creates owner's token account for mint unless it already exists.
func BuildCreateATAIdempotentInstruction(payer, owner, mint, tokenProgram solana.PublicKey) (solana.Instruction, error) {
	ata, err := AssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
	}

	// 1 = CreateIdempotent
	return solana.NewInstruction(AssociatedTokenProgramID, accounts, []byte{1}), nil
}

// BuyInstructions returns the buy instruction, preceded by an idempotent ATA
// creation when forced or when checker reports the user's token account missing.
// A nil checker skips the existence check.
func (b *Builder) BuyInstructions(ctx context.Context, checker AccountChecker, p BuyParams) ([]solana.Instruction, error) {
	route := b.routingFor(p.Mode, p.FeeRecipient)

	needATA := p.ForceCreateATA
	if !needATA && checker != nil {
		ata, err := AssociatedTokenAddress(p.User, p.Mint, route.tokenProgram)
		if err != nil {
			return nil, err
		}
		exists, err := checker.AccountExists(ctx, ata)
		if err != nil {
			return nil, fmt.Errorf("failed to check token account %s: %w", ata, err)
		}
		needATA = !exists
	}

	instructions := make([]solana.Instruction, 0, 2)
	if needATA {
		createATA, err := BuildCreateATAIdempotentInstruction(p.User, p.User, p.Mint, route.tokenProgram)
		if err != nil {
			return nil, fmt.Errorf("failed to build create ATA instruction: %w", err)
		}
		instructions = append(instructions, createATA)
		b.logger.Debug("Prepending associated token account creation",
			zap.String("owner", p.User.String()),
			zap.Bool("forced", p.ForceCreateATA))
	}

	buy, err := b.BuildBuyInstruction(p)
	if err != nil {
		return nil, err
	}
	return append(instructions, buy), nil
}

// SellInstructions returns the sell instruction list.
func (b *Builder) SellInstructions(p SellParams) ([]solana.Instruction, error) {
	sell, err := b.BuildSellInstruction(p)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{sell}, nil
}

// encodeTradeArgs writes disc + amount + bound, plus the option byte when flag is set.
func encodeTradeArgs(disc [8]byte, amount, bound uint64, flag *bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteBytes(disc[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(amount, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(bound, bin.LE); err != nil {
		return nil, err
	}
	if flag != nil {
		if err := enc.WriteBool(*flag); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeCreateArgs(name, symbol, uri string, creator solana.PublicKey) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteBytes(CreateDiscriminator[:], false); err != nil {
		return nil, err
	}
	for _, s := range []string{name, symbol, uri} {
		if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes([]byte(s), false); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteBytes(creator[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
