// =============================
// File: pkg/pumpfun/trade.go
// =============================
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BuyRequest is a buy by SOL amount. Global and Curve are optional cached
// snapshots; missing ones are fetched.
type BuyRequest struct {
	User                solana.PublicKey
	Mint                solana.PublicKey
	SolAmount           uint64
	SlippageBasisPoints uint64
	TrackVolume         *bool
	ForceCreateATA      bool
	Priority            *PriorityFee

	Global *GlobalAccount
	Curve  *BondingCurve
}

// SellRequest is a sell by token amount.
type SellRequest struct {
	User                solana.PublicKey
	Mint                solana.PublicKey
	TokenAmount         uint64
	SlippageBasisPoints uint64
	Priority            *PriorityFee

	Global *GlobalAccount
	Curve  *BondingCurve
}

// PreparedTrade is a priced trade ready to be signed by the caller.
type PreparedTrade struct {
	Quote        *Quote
	Mode         RoutingMode
	Instructions []solana.Instruction
}

// PrepareBuy prices a buy against the current curve and builds its instructions.
func (b *Builder) PrepareBuy(ctx context.Context, fetcher AccountFetcher, checker AccountChecker, req BuyRequest) (*PreparedTrade, error) {
	global, curve, err := b.loadSnapshots(ctx, fetcher, req.Mint, req.Global, req.Curve)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteBuy(curve, req.SolAmount, req.SlippageBasisPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to quote buy for %s: %w", req.Mint, err)
	}

	b.logger.Debug("Calculated buy parameters",
		zap.String("mint", req.Mint.String()),
		zap.Uint64("sol_amount", quote.Input),
		zap.Uint64("token_amount", quote.Output),
		zap.Uint64("max_sol_cost", quote.Bound),
		zap.Stringer("mode", curve.Mode))

	instructions, err := b.BuyInstructions(ctx, checker, BuyParams{
		User:           req.User,
		Mint:           req.Mint,
		Creator:        curve.Creator,
		FeeRecipient:   global.FeeRecipient,
		Mode:           curve.Mode,
		Amount:         quote.Output,
		MaxSolCost:     quote.Bound,
		TrackVolume:    req.TrackVolume,
		ForceCreateATA: req.ForceCreateATA,
	})
	if err != nil {
		return nil, err
	}

	instructions = append(req.Priority.Instructions(), instructions...)
	return &PreparedTrade{Quote: quote, Mode: curve.Mode, Instructions: instructions}, nil
}

// PrepareSell prices a sell against the current curve and builds its instructions.
func (b *Builder) PrepareSell(ctx context.Context, fetcher AccountFetcher, req SellRequest) (*PreparedTrade, error) {
	global, curve, err := b.loadSnapshots(ctx, fetcher, req.Mint, req.Global, req.Curve)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteSell(curve, global, req.TokenAmount, req.SlippageBasisPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to quote sell for %s: %w", req.Mint, err)
	}

	b.logger.Debug("Calculated sell parameters",
		zap.String("mint", req.Mint.String()),
		zap.Uint64("token_amount", quote.Input),
		zap.Uint64("sol_output", quote.Output),
		zap.Uint64("fee", quote.Fee),
		zap.Uint64("min_sol_output", quote.Bound),
		zap.Stringer("mode", curve.Mode))

	instructions, err := b.SellInstructions(SellParams{
		User:         req.User,
		Mint:         req.Mint,
		Creator:      curve.Creator,
		FeeRecipient: global.FeeRecipient,
		Mode:         curve.Mode,
		Amount:       quote.Input,
		MinSolOutput: quote.Bound,
	})
	if err != nil {
		return nil, err
	}

	instructions = append(req.Priority.Instructions(), instructions...)
	return &PreparedTrade{Quote: quote, Mode: curve.Mode, Instructions: instructions}, nil
}

// CreateAndBuyInstructions builds a launch, optionally followed by the creator's first buy
// priced from the global initial reserves. solAmount of zero builds the launch only.
func (b *Builder) CreateAndBuyInstructions(
	ctx context.Context,
	fetcher AccountFetcher,
	p CreateParams,
	solAmount uint64,
	slippageBasisPoints uint64,
	global *GlobalAccount,
) ([]solana.Instruction, *Quote, error) {
	create, err := b.BuildCreateInstruction(p)
	if err != nil {
		return nil, nil, err
	}
	if solAmount == 0 {
		return []solana.Instruction{create}, nil, nil
	}

	if global == nil {
		if fetcher == nil {
			return nil, nil, fmt.Errorf("global account snapshot or fetcher required")
		}
		global, err = FetchGlobalAccount(ctx, fetcher, b.cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	quote, err := QuoteInitialBuy(global, solAmount, slippageBasisPoints)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to quote initial buy: %w", err)
	}

	creator := p.Creator
	if creator.IsZero() {
		creator = p.User
	}

	// the mint does not exist yet, so its token account cannot either
	buy, err := b.BuyInstructions(ctx, nil, BuyParams{
		User:           p.User,
		Mint:           p.Mint,
		Creator:        creator,
		FeeRecipient:   global.FeeRecipient,
		Mode:           ModeStandard,
		Amount:         quote.Output,
		MaxSolCost:     quote.Bound,
		ForceCreateATA: true,
	})
	if err != nil {
		return nil, nil, err
	}

	return append([]solana.Instruction{create}, buy...), quote, nil
}

// loadSnapshots returns the cached snapshots, fetching whichever are missing concurrently.
func (b *Builder) loadSnapshots(
	ctx context.Context,
	fetcher AccountFetcher,
	mint solana.PublicKey,
	global *GlobalAccount,
	curve *BondingCurve,
) (*GlobalAccount, *BondingCurve, error) {
	if global != nil && curve != nil {
		return global, curve, nil
	}
	if fetcher == nil {
		return nil, nil, fmt.Errorf("account fetcher required for %s", mint)
	}

	g, gctx := errgroup.WithContext(ctx)
	if global == nil {
		g.Go(func() error {
			var err error
			global, err = FetchGlobalAccount(gctx, fetcher, b.cfg)
			return err
		})
	}
	if curve == nil {
		g.Go(func() error {
			var err error
			curve, err = FetchBondingCurve(gctx, fetcher, b.cfg, mint)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return global, curve, nil
}
