package curve

// TradingFee computes floor(amount*rate/FeeDivisor). A rate of 1_000 charges
// 1% of amount. Rounds down, in the pool's favour.
func TradingFee(rate, amount uint64) (uint64, error) {
	return MulDiv(amount, rate, FeeDivisor)
}
