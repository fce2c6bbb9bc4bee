package amm

const (
	// MinimumLiquidity is the number of shares permanently locked by the
	// first deposit into a pool. The shares are never minted; they are
	// accounted for in the withdraw denominator.
	MinimumLiquidity uint64 = 1000

	// FeeDenominator is the basis-point scale of AMM fees. A fee must be
	// strictly below it.
	FeeDenominator uint64 = 10000

	// LiquidityDecimals is the display precision of pool shares.
	LiquidityDecimals = 6
)
