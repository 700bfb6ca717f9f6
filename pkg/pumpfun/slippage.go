// =============================================
// File: pkg/pumpfun/slippage.go
// =============================================
package pumpfun

import (
	"fmt"
	"math/bits"
)

// ApplyBuySlippage returns the maximum SOL cost for a buy: ceil(amount*(10000+bps)/10000).
// Rounding up keeps the ceiling at least as loose as requested.
func ApplyBuySlippage(amount, basisPoints uint64) (uint64, error) {
	factor, err := addChecked(BasisPointsDenominator, basisPoints)
	if err != nil {
		return 0, err
	}

	hi, lo := bits.Mul64(amount, factor)
	if hi >= BasisPointsDenominator {
		return 0, fmt.Errorf("%w: buy slippage on %d", ErrArithmeticOverflow, amount)
	}
	q, rem := bits.Div64(hi, lo, BasisPointsDenominator)
	if rem != 0 {
		return addChecked(q, 1)
	}
	return q, nil
}

// ApplySellSlippage returns the minimum SOL output for a sell: floor(amount*(10000-bps)/10000).
// Slippage of 100% or more yields zero.
func ApplySellSlippage(amount, basisPoints uint64) uint64 {
	if basisPoints >= BasisPointsDenominator {
		return 0
	}
	// the factor is below the denominator, so the quotient always fits
	out, _ := mulDiv(amount, BasisPointsDenominator-basisPoints, BasisPointsDenominator)
	return out
}
