// cmd/pumpfun/commands.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/config"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/eventlistener"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/events"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/export"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/logger"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/ui/style"
	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

// chain is what the commands need from the RPC adapter.
type chain interface {
	pumpfun.AccountFetcher
	pumpfun.AccountChecker
}

type app struct {
	cfg     *config.Config
	program *pumpfun.Config
	builder *pumpfun.Builder
	chain   chain
	logger  *zap.Logger
	styles  style.Styles
	out     io.Writer
}

func newApp(cfg *config.Config, log *zap.Logger, out io.Writer) (*app, error) {
	program := pumpfun.DefaultConfig()
	builder, err := pumpfun.NewBuilder(program, log)
	if err != nil {
		return nil, err
	}
	client := solbc.NewClient(cfg.RPCURL, log,
		solbc.WithCommitment(cfg.CommitmentType()),
		solbc.WithRetries(uint(cfg.Retries), cfg.RetryInterval()))

	return &app{
		cfg:     cfg,
		program: program,
		builder: builder,
		chain:   client,
		logger:  log,
		styles:  style.DefaultStyles(),
		out:     out,
	}, nil
}

func (a *app) print(title string, rows []style.Row) {
	fmt.Fprintln(a.out, a.styles.Panel(title, rows))
}

func (a *app) printInstructions(instructions []solana.Instruction) error {
	for i, ix := range instructions {
		rows, err := instructionRows(ix)
		if err != nil {
			return err
		}
		a.print(fmt.Sprintf("Instruction %d/%d", i+1, len(instructions)), rows)
	}
	return nil
}

// priorityFee resolves the configured compute budget with level replacing the configured profile.
func (a *app) priorityFee(level string) (*pumpfun.PriorityFee, error) {
	cfg := *a.cfg
	cfg.PriorityLevel = strings.ToLower(level)
	return cfg.PriorityFee()
}

// tradeFlags are shared by the quote and build commands.
type tradeFlags struct {
	fs       *flag.FlagSet
	mint     *string
	user     *string
	amount   *string
	slippage *uint64
}

func newTradeFlags(name, amountFlag, amountHelp string, withUser bool, defaultSlippage uint64) *tradeFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	tf := &tradeFlags{
		fs:       fs,
		mint:     fs.String("mint", "", "token mint address"),
		amount:   fs.String(amountFlag, "", amountHelp),
		slippage: fs.Uint64("slippage", defaultSlippage, "slippage tolerance in basis points"),
	}
	if withUser {
		tf.user = fs.String("user", "", "wallet that signs the trade")
	}
	return tf
}

func (tf *tradeFlags) parse(args []string, amountFlag string, decimals int32) (mint, user solana.PublicKey, amount uint64, err error) {
	if err = tf.fs.Parse(args); err != nil {
		return
	}
	if mint, err = parsePublicKey("mint", *tf.mint); err != nil {
		return
	}
	if tf.user != nil {
		if user, err = parsePublicKey("user", *tf.user); err != nil {
			return
		}
	}
	if *tf.amount == "" {
		err = fmt.Errorf("-%s is required", amountFlag)
		return
	}
	amount, err = parseUnits(*tf.amount, decimals)
	return
}

func runQuoteBuy(ctx context.Context, a *app, args []string) error {
	tf := newTradeFlags("quote-buy", "sol", "SOL to spend", false, a.cfg.SlippageBps)
	mint, _, lamports, err := tf.parse(args, "sol", solDecimals)
	if err != nil {
		return err
	}

	curve, err := pumpfun.FetchBondingCurve(ctx, a.chain, a.program, mint)
	if err != nil {
		return err
	}
	quote, err := pumpfun.QuoteBuy(curve, lamports, *tf.slippage)
	if err != nil {
		return err
	}
	a.print("Buy quote "+logger.ShortenAddress(mint.String()), quoteRows(quote, curve))
	return nil
}

func runQuoteSell(ctx context.Context, a *app, args []string) error {
	tf := newTradeFlags("quote-sell", "tokens", "tokens to sell", false, a.cfg.SlippageBps)
	mint, _, tokens, err := tf.parse(args, "tokens", pumpfun.DefaultDecimals)
	if err != nil {
		return err
	}

	global, err := pumpfun.FetchGlobalAccount(ctx, a.chain, a.program)
	if err != nil {
		return err
	}
	curve, err := pumpfun.FetchBondingCurve(ctx, a.chain, a.program, mint)
	if err != nil {
		return err
	}
	quote, err := pumpfun.QuoteSell(curve, global, tokens, *tf.slippage)
	if err != nil {
		return err
	}
	a.print("Sell quote "+logger.ShortenAddress(mint.String()), quoteRows(quote, curve))
	return nil
}

func runBuildBuy(ctx context.Context, a *app, args []string) error {
	tf := newTradeFlags("build-buy", "sol", "SOL to spend", true, a.cfg.SlippageBps)
	trackVolume := tf.fs.Bool("track-volume", a.cfg.TrackVolume, "accrue volume rewards")
	forceATA := tf.fs.Bool("force-ata", a.cfg.ForceCreateATA, "always include the idempotent token account creation")
	level := tf.fs.String("priority", a.cfg.PriorityLevel, "compute budget profile: low, medium, high or extreme")
	mint, user, lamports, err := tf.parse(args, "sol", solDecimals)
	if err != nil {
		return err
	}
	priority, err := a.priorityFee(*level)
	if err != nil {
		return err
	}

	prepared, err := a.builder.PrepareBuy(ctx, a.chain, a.chain, pumpfun.BuyRequest{
		User:                user,
		Mint:                mint,
		SolAmount:           lamports,
		SlippageBasisPoints: *tf.slippage,
		TrackVolume:         trackVolume,
		ForceCreateATA:      *forceATA,
		Priority:            priority,
	})
	if err != nil {
		return err
	}
	a.print("Buy "+logger.ShortenAddress(mint.String()), quoteRows(prepared.Quote, nil))
	return a.printInstructions(prepared.Instructions)
}

func runBuildSell(ctx context.Context, a *app, args []string) error {
	tf := newTradeFlags("build-sell", "tokens", "tokens to sell", true, a.cfg.SlippageBps)
	level := tf.fs.String("priority", a.cfg.PriorityLevel, "compute budget profile: low, medium, high or extreme")
	mint, user, tokens, err := tf.parse(args, "tokens", pumpfun.DefaultDecimals)
	if err != nil {
		return err
	}
	priority, err := a.priorityFee(*level)
	if err != nil {
		return err
	}

	prepared, err := a.builder.PrepareSell(ctx, a.chain, pumpfun.SellRequest{
		User:                user,
		Mint:                mint,
		TokenAmount:         tokens,
		SlippageBasisPoints: *tf.slippage,
		Priority:            priority,
	})
	if err != nil {
		return err
	}
	a.print("Sell "+logger.ShortenAddress(mint.String()), quoteRows(prepared.Quote, nil))
	return a.printInstructions(prepared.Instructions)
}

func runBuildCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("build-create", flag.ContinueOnError)
	mintFlag := fs.String("mint", "", "new mint address")
	userFlag := fs.String("user", "", "creator wallet")
	name := fs.String("name", "", "token name")
	symbol := fs.String("symbol", "", "token symbol")
	uri := fs.String("uri", "", "metadata URI")
	sol := fs.String("sol", "0", "SOL for the creator's first buy")
	slippage := fs.Uint64("slippage", a.cfg.SlippageBps, "slippage tolerance in basis points")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mint, err := parsePublicKey("mint", *mintFlag)
	if err != nil {
		return err
	}
	user, err := parsePublicKey("user", *userFlag)
	if err != nil {
		return err
	}
	lamports, err := parseUnits(*sol, solDecimals)
	if err != nil {
		return err
	}

	instructions, quote, err := a.builder.CreateAndBuyInstructions(ctx, a.chain, pumpfun.CreateParams{
		Mint:    mint,
		User:    user,
		Name:    *name,
		Symbol:  *symbol,
		URI:     *uri,
		Creator: user,
	}, lamports, *slippage, nil)
	if err != nil {
		return err
	}
	if quote != nil {
		a.print("Initial buy", quoteRows(quote, nil))
	}
	return a.printInstructions(instructions)
}

func runDerive(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	mintFlag := fs.String("mint", "", "token mint address")
	userFlag := fs.String("user", "", "wallet for token account and volume accumulator (optional)")
	creatorFlag := fs.String("creator", "", "coin creator for the creator vault (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mint, err := parsePublicKey("mint", *mintFlag)
	if err != nil {
		return err
	}

	programID := a.program.ContractAddress
	rows := []style.Row{
		{Key: "program", Value: programID.String()},
		{Key: "mayhem program", Value: pumpfun.MayhemProgramID.String()},
		{Key: "global", Value: a.program.Global.String()},
	}

	add := func(name string, derive func() (solana.PublicKey, uint8, error)) error {
		addr, bump, err := derive()
		if err != nil {
			return fmt.Errorf("failed to derive %s: %w", name, err)
		}
		rows = append(rows, style.Row{Key: name, Value: fmt.Sprintf("%s (bump %d)", addr, bump)})
		return nil
	}

	if err := add("mint authority", func() (solana.PublicKey, uint8, error) { return pumpfun.MintAuthorityPDA(programID) }); err != nil {
		return err
	}
	if err := add("bonding curve", func() (solana.PublicKey, uint8, error) { return pumpfun.BondingCurvePDA(programID, mint) }); err != nil {
		return err
	}
	if err := add("metadata", func() (solana.PublicKey, uint8, error) {
		return pumpfun.MetadataPDA(a.program.MetadataProgram, mint)
	}); err != nil {
		return err
	}

	if *creatorFlag != "" {
		creator, err := parsePublicKey("creator", *creatorFlag)
		if err != nil {
			return err
		}
		if err := add("creator vault", func() (solana.PublicKey, uint8, error) { return pumpfun.CreatorVaultPDA(programID, creator) }); err != nil {
			return err
		}
	}
	if *userFlag != "" {
		user, err := parsePublicKey("user", *userFlag)
		if err != nil {
			return err
		}
		if err := add("user volume", func() (solana.PublicKey, uint8, error) { return pumpfun.UserVolumeAccumulatorPDA(programID, user) }); err != nil {
			return err
		}
		for _, tp := range []struct {
			name    string
			program solana.PublicKey
		}{{"user ata", pumpfun.TokenProgramID}, {"user ata 2022", pumpfun.Token2022ProgramID}} {
			ata, err := pumpfun.AssociatedTokenAddress(user, mint, tp.program)
			if err != nil {
				return err
			}
			rows = append(rows, style.Row{Key: tp.name, Value: ata.String()})
		}
	}

	a.print("Addresses "+logger.ShortenAddress(mint.String()), rows)
	a.print("Discriminators", discriminatorRows())
	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	outPath := fs.String("out", "", "append events to this file")
	format := fs.String("format", string(export.FormatCSV), "output file format: csv or json")
	mintFlag := fs.String("mint", "", "only print events for this mint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var mintFilter solana.PublicKey
	if *mintFlag != "" {
		mint, err := parsePublicKey("mint", *mintFlag)
		if err != nil {
			return err
		}
		mintFilter = mint
	}

	var recorder *export.TradeRecorder
	if *outPath != "" {
		var err error
		recorder, err = export.NewTradeRecorder(*outPath, export.ExportFormat(*format), time.Second, a.logger)
		if err != nil {
			return err
		}
	}

	bus := events.NewBus(a.logger, a.cfg.EventBuffer)
	defer stopWatch(bus, recorder, a.logger)

	all := []events.EventType{events.TokenCreated, events.TokenTraded, events.CurveCompleted, events.ParamsChanged}
	bus.SubscribeAll(events.ProgramHandler(func(_ context.Context, e *events.ProgramEvent) error {
		if line, ok := a.renderEvent(e, mintFilter); ok {
			fmt.Fprintln(a.out, line)
		}
		return nil
	}), all...)

	if recorder != nil {
		bus.Subscribe(events.TokenTraded, recorder)
	}

	listener := eventlistener.NewListener(a.cfg.WebSocketURL, a.program.ContractAddress, a.cfg.CommitmentType(), bus, a.logger)
	return listener.Run(ctx)
}

// stopWatch drains the bus before closing the recorder so queued trades reach the file.
func stopWatch(bus *events.Bus, recorder *export.TradeRecorder, log *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bus.Shutdown(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if recorder == nil {
		return
	}
	if err := recorder.Close(); err != nil {
		log.Error("Failed to close trade recorder", zap.Error(err))
	}
}

// renderEvent formats one event line; ok is false when the mint filter excludes it.
func (a *app) renderEvent(e *events.ProgramEvent, mintFilter solana.PublicKey) (string, bool) {
	s := a.styles
	record := export.NewRecord(e)
	if !mintFilter.IsZero() && record.Mint != mintFilter.String() {
		return "", false
	}

	head := fmt.Sprintf("%s %s", s.Muted.Render(fmt.Sprintf("[%d]", e.Slot)), s.Event.Render(record.Kind))
	switch p := e.Payload.(type) {
	case *pumpfun.CreateEvent:
		return fmt.Sprintf("%s %s (%s) %s", head, p.Name, p.Symbol, logger.ShortenAddress(record.Mint)), true
	case *pumpfun.TradeEvent:
		return fmt.Sprintf("%s %s %s %s for %s by %s", head, s.Side(p.IsBuy),
			formatTokens(p.TokenAmount), logger.ShortenAddress(record.Mint),
			formatSol(p.SolAmount), logger.ShortenAddress(record.User)), true
	case *pumpfun.CompleteEvent:
		return fmt.Sprintf("%s %s %s", head, logger.ShortenAddress(record.Mint), s.Warn.Render("curve complete")), true
	case *pumpfun.SetParamsEvent:
		return fmt.Sprintf("%s fee %d bps, recipient %s", head, p.FeeBasisPoints, logger.ShortenAddress(p.FeeRecipient.String())), true
	}
	return head, true
}
