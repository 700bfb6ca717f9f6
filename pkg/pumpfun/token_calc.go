// =============================================
// File: pkg/pumpfun/token_calc.go
// =============================================
package pumpfun

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// Side is the direction of a priced trade.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// Quote is the result of pricing one trade.
// For buys Input is lamports and Output tokens; Bound is the max SOL cost.
// For sells Input is tokens and Output lamports after fee; Bound is the min SOL output.
type Quote struct {
	Side   Side
	Input  uint64
	Output uint64
	Fee    uint64
	Bound  uint64
}

// mulDiv returns floor(a*b/d) computed over a 128-bit product.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, fmt.Errorf("%w: %d*%d/%d", ErrArithmeticOverflow, a, b, d)
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

func addChecked(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d+%d", ErrArithmeticOverflow, a, b)
	}
	return sum, nil
}

// constantProductOut returns floor(reserveOut*amountIn/(reserveIn+amountIn)).
func constantProductOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	denominator, err := addChecked(reserveIn, amountIn)
	if err != nil {
		return 0, err
	}
	return mulDiv(reserveOut, amountIn, denominator)
}

// InitialBuyPrice quotes tokens out for a curve that has not traded yet.
func (a *GlobalAccount) InitialBuyPrice(solIn uint64) (uint64, error) {
	if solIn == 0 {
		return 0, nil
	}
	tokens, err := constantProductOut(a.InitialVirtualSolReserves, a.InitialVirtualTokenReserves, solIn)
	if err != nil {
		return 0, err
	}
	return min(tokens, a.InitialRealTokenReserves), nil
}

// BuyPrice returns the tokens received for solIn lamports, capped at the real token reserves.
func (c *BondingCurve) BuyPrice(solIn uint64) (uint64, error) {
	if c.Complete {
		return 0, ErrCurveComplete
	}
	if solIn == 0 {
		return 0, nil
	}
	tokens, err := constantProductOut(c.VirtualSolReserves, c.VirtualTokenReserves, solIn)
	if err != nil {
		return 0, err
	}
	return min(tokens, c.RealTokenReserves), nil
}

// SellPrice returns the lamports received for tokensIn after the protocol fee.
func (c *BondingCurve) SellPrice(tokensIn uint64, feeBasisPoints uint16) (uint64, error) {
	net, _, err := c.sellAmounts(tokensIn, feeBasisPoints)
	return net, err
}

func (c *BondingCurve) sellAmounts(tokensIn uint64, feeBasisPoints uint16) (net, fee uint64, err error) {
	if c.Complete {
		return 0, 0, ErrCurveComplete
	}
	if feeBasisPoints > BasisPointsDenominator {
		return 0, 0, fmt.Errorf("%w: fee basis points %d", ErrInvalidField, feeBasisPoints)
	}
	if tokensIn > c.RealTokenReserves {
		return 0, 0, fmt.Errorf("%w: selling %d tokens, real reserves %d", ErrInsufficientReserves, tokensIn, c.RealTokenReserves)
	}
	if tokensIn == 0 {
		return 0, 0, nil
	}

	gross, err := constantProductOut(c.VirtualTokenReserves, c.VirtualSolReserves, tokensIn)
	if err != nil {
		return 0, 0, err
	}
	fee, err = mulDiv(gross, uint64(feeBasisPoints), BasisPointsDenominator)
	if err != nil {
		return 0, 0, err
	}
	return gross - fee, fee, nil
}

// MarketCapSol is TokenTotalSupply valued at the current virtual price, in lamports.
func (c *BondingCurve) MarketCapSol() (uint64, error) {
	if c.VirtualTokenReserves == 0 {
		return 0, nil
	}
	return mulDiv(c.TokenTotalSupply, c.VirtualSolReserves, c.VirtualTokenReserves)
}

// FinalMarketCapSol estimates the market cap once all real tokens are bought.
func (c *BondingCurve) FinalMarketCapSol(feeBasisPoints uint16) (uint64, error) {
	buyOut, err := c.BuyOutPrice(c.RealTokenReserves, feeBasisPoints)
	if err != nil {
		return 0, err
	}
	if c.VirtualTokenReserves <= c.RealTokenReserves {
		return 0, fmt.Errorf("%w: virtual token reserves %d not above real %d", ErrInsufficientReserves, c.VirtualTokenReserves, c.RealTokenReserves)
	}
	solReserves, err := addChecked(c.VirtualSolReserves, buyOut)
	if err != nil {
		return 0, err
	}
	return mulDiv(c.TokenTotalSupply, solReserves, c.VirtualTokenReserves-c.RealTokenReserves)
}

// BuyOutPrice is the lamport cost, fee included, to buy amount tokens off the curve.
// The token amount is floored at the real SOL reserves, mirroring the deployed SDK.
func (c *BondingCurve) BuyOutPrice(amount uint64, feeBasisPoints uint16) (uint64, error) {
	tokens := max(amount, c.RealSolReserves)
	if tokens >= c.VirtualTokenReserves {
		return 0, fmt.Errorf("%w: buy out of %d tokens exceeds virtual reserves %d", ErrInsufficientReserves, tokens, c.VirtualTokenReserves)
	}

	sellValue, err := mulDiv(tokens, c.VirtualSolReserves, c.VirtualTokenReserves-tokens)
	if err != nil {
		return 0, err
	}
	sellValue, err = addChecked(sellValue, 1)
	if err != nil {
		return 0, err
	}
	fee, err := mulDiv(sellValue, uint64(feeBasisPoints), BasisPointsDenominator)
	if err != nil {
		return 0, err
	}
	return addChecked(sellValue, fee)
}

// SpotPrice is the lamport price of one whole token at the current virtual reserves.
// Display only: pricing paths never go through decimal.
func (c *BondingCurve) SpotPrice() decimal.Decimal {
	if c.VirtualTokenReserves == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(c.VirtualSolReserves), DefaultDecimals).
		Div(decimal.NewFromBigInt(new(big.Int).SetUint64(c.VirtualTokenReserves), 0))
}

// QuoteBuy prices a buy of solIn lamports with slippage applied to the SOL cost.
func QuoteBuy(curve *BondingCurve, solIn uint64, slippageBasisPoints uint64) (*Quote, error) {
	tokens, err := curve.BuyPrice(solIn)
	if err != nil {
		return nil, err
	}
	bound, err := ApplyBuySlippage(solIn, slippageBasisPoints)
	if err != nil {
		return nil, err
	}
	return &Quote{Side: SideBuy, Input: solIn, Output: tokens, Bound: bound}, nil
}

// QuoteInitialBuy prices the first buy of a freshly created curve.
func QuoteInitialBuy(global *GlobalAccount, solIn uint64, slippageBasisPoints uint64) (*Quote, error) {
	tokens, err := global.InitialBuyPrice(solIn)
	if err != nil {
		return nil, err
	}
	bound, err := ApplyBuySlippage(solIn, slippageBasisPoints)
	if err != nil {
		return nil, err
	}
	return &Quote{Side: SideBuy, Input: solIn, Output: tokens, Bound: bound}, nil
}

// QuoteSell prices a sell of tokensIn using the global fee, with slippage on the SOL output.
func QuoteSell(curve *BondingCurve, global *GlobalAccount, tokensIn uint64, slippageBasisPoints uint64) (*Quote, error) {
	net, fee, err := curve.sellAmounts(tokensIn, global.FeeBasisPoints)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Side:   SideSell,
		Input:  tokensIn,
		Output: net,
		Fee:    fee,
		Bound:  ApplySellSlippage(net, slippageBasisPoints),
	}, nil
}
