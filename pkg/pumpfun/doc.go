// Package pumpfun is a client-side library for the Pump.fun bonding-curve program on Solana.
//
// This package provides:
// - Program-derived address derivation for the global, bonding curve, creator vault,
//   volume accumulator, metadata and associated token accounts.
// - Decoding of the global and bonding curve accounts.
// - Integer-only buy/sell pricing and slippage bounds.
// - Create, buy and sell instruction assembly for standard and mayhem routing.
// - Decoding of program events from transaction logs.
//
// Key Types and Functions:
//
// - Builder: assembles instructions; NewBuilder() fills a partial Config from DefaultConfig().
// - DecodeGlobalAccount(), DecodeBondingCurve(): account codecs.
// - QuoteBuy(), QuoteSell(), QuoteInitialBuy(): pricing with slippage.
// - ApplyBuySlippage(), ApplySellSlippage(): bound calculation.
// - DecodeEvent(), EventDecoder.DecodeLogs(): event decoding.
//
// Network access is left to the caller through the AccountFetcher and AccountChecker
// interfaces; signing and submission are out of scope.
//
// Usage example:
//
//	builder, err := pumpfun.NewBuilder(nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	trade, err := builder.PrepareBuy(ctx, rpcClient, rpcClient, pumpfun.BuyRequest{
//	    User:                wallet,
//	    Mint:                mint,
//	    SolAmount:           100_000_000,
//	    SlippageBasisPoints: pumpfun.DefaultSlippageBasisPoints,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// sign and send trade.Instructions
package pumpfun
