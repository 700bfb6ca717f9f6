// ====================================
// File: cmd/pumpfun/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/config"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/logger"
)

const usage = `usage: pumpfun [-config path] <command> [flags]

commands:
  quote-buy     price a buy of -sol against a mint's bonding curve
  quote-sell    price a sell of -tokens against a mint's bonding curve
  build-buy     build buy instructions for -user
  build-sell    build sell instructions for -user
  build-create  build a launch with an optional first buy
  derive        print program derived addresses for a mint
  watch         stream decoded program events
`

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"quote-buy":    runQuoteBuy,
	"quote-sell":   runQuoteSell,
	"build-buy":    runBuildBuy,
	"build-sell":   runBuildSell,
	"build-create": runBuildCreate,
	"derive":       runDerive,
	"watch":        runWatch,
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	fs := flag.NewFlagSet("pumpfun", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	run, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := newApp(cfg, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
	}

	if err := run(ctx, application, fs.Args()[1:]); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Command failed", zap.String("command", fs.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}
