package pumpfun

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyPrice_FirstBuyOfOneSol(t *testing.T) {
	global := newTestGlobal()
	curve := newTestCurve()

	const solIn = uint64(1_000_000_000)
	want := uint64(34_612_903_225_806) // floor(1_073e12 * 1e9 / 31e9)

	tokens, err := curve.BuyPrice(solIn)
	require.NoError(t, err)
	assert.Equal(t, want, tokens)

	initial, err := global.InitialBuyPrice(solIn)
	require.NoError(t, err)
	assert.Equal(t, want, initial)

	maxCost, err := ApplyBuySlippage(solIn, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_050_000_000), maxCost)

	quote, err := QuoteBuy(curve, solIn, 500)
	require.NoError(t, err)
	assert.Equal(t, &Quote{Side: SideBuy, Input: solIn, Output: want, Bound: 1_050_000_000}, quote)
}

func TestBuyPrice_ClampedToRealReserves(t *testing.T) {
	curve := newTestCurve()
	curve.RealTokenReserves = 1_000

	tokens, err := curve.BuyPrice(1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), tokens)

	global := newTestGlobal()
	global.InitialRealTokenReserves = 5
	initial, err := global.InitialBuyPrice(1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), initial)
}

func TestBuyPrice_ZeroInput(t *testing.T) {
	tokens, err := newTestCurve().BuyPrice(0)
	require.NoError(t, err)
	assert.Zero(t, tokens)
}

func TestBuyPrice_Monotonic(t *testing.T) {
	curve := newTestCurve()
	curve.RealTokenReserves = math.MaxUint64

	var prev uint64
	for _, solIn := range []uint64{0, 1, 2, 10, 1_000, 999_999, 1_000_000_000, 50_000_000_000, 1 << 40, 1 << 50, 1 << 62} {
		tokens, err := curve.BuyPrice(solIn)
		require.NoError(t, err, "sol_in %d", solIn)
		assert.GreaterOrEqual(t, tokens, prev, "sol_in %d", solIn)
		prev = tokens
	}
}

func TestPricing_CompleteCurve(t *testing.T) {
	curve := newTestCurve()
	curve.Complete = true

	for _, amount := range []uint64{0, 1, 1_000_000_000, math.MaxUint64} {
		_, err := curve.BuyPrice(amount)
		assert.ErrorIs(t, err, ErrCurveComplete)

		_, err = curve.SellPrice(amount, 100)
		assert.ErrorIs(t, err, ErrCurveComplete)
	}

	_, err := QuoteBuy(curve, 1, 0)
	assert.ErrorIs(t, err, ErrCurveComplete)
	_, err = QuoteSell(curve, newTestGlobal(), 1, 0)
	assert.ErrorIs(t, err, ErrCurveComplete)
}

func TestSellPrice(t *testing.T) {
	curve := newTestCurve()

	// gross = floor(1e12 * 30e9 / (1_073e12 + 1e12)) = 27_932_960, fee = 279_329
	net, err := curve.SellPrice(1_000_000_000_000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(27_653_631), net)

	gross, err := curve.SellPrice(1_000_000_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(27_932_960), gross)

	quote, err := QuoteSell(curve, newTestGlobal(), 1_000_000_000_000, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(279_329), quote.Fee)
	assert.Equal(t, uint64(27_653_631), quote.Output)
	assert.Equal(t, uint64(26_270_949), quote.Bound)
	assert.Equal(t, SideSell, quote.Side)
}

func TestSellPrice_Errors(t *testing.T) {
	curve := newTestCurve()

	_, err := curve.SellPrice(curve.RealTokenReserves+1, 100)
	assert.ErrorIs(t, err, ErrInsufficientReserves)

	_, err = curve.SellPrice(1, 10_001)
	assert.ErrorIs(t, err, ErrInvalidField)

	out, err := curve.SellPrice(0, 100)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestArithmeticOverflow(t *testing.T) {
	curve := &BondingCurve{
		VirtualTokenReserves: math.MaxUint64,
		VirtualSolReserves:   math.MaxUint64,
		RealTokenReserves:    math.MaxUint64,
	}
	_, err := curve.BuyPrice(1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = mulDiv(math.MaxUint64, math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	q, err := mulDiv(math.MaxUint64, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), q)
}

func TestMarketCap(t *testing.T) {
	curve := newTestCurve()

	mcap, err := curve.MarketCapSol()
	require.NoError(t, err)
	assert.Equal(t, uint64(27_958_993_476), mcap)

	final, err := curve.FinalMarketCapSol(100)
	require.NoError(t, err)
	assert.Greater(t, final, mcap)

	empty := &BondingCurve{}
	mcap, err = empty.MarketCapSol()
	require.NoError(t, err)
	assert.Zero(t, mcap)
}

func TestBuyOutPrice(t *testing.T) {
	curve := newTestCurve()

	withoutFee, err := curve.BuyOutPrice(curve.RealTokenReserves, 0)
	require.NoError(t, err)
	withFee, err := curve.BuyOutPrice(curve.RealTokenReserves, 100)
	require.NoError(t, err)

	assert.Equal(t, withoutFee+withoutFee/100, withFee)

	_, err = curve.BuyOutPrice(curve.VirtualTokenReserves, 0)
	assert.ErrorIs(t, err, ErrInsufficientReserves)
}

func TestSpotPrice(t *testing.T) {
	price := newTestCurve().SpotPrice()
	assert.Equal(t, "27.958993", price.StringFixed(6))

	assert.True(t, (&BondingCurve{}).SpotPrice().IsZero())
}
