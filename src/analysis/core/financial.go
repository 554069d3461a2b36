package core

// -----------------------------------------------------------------------------

// ComputeChange returns the absolute change and the percentage change rate
// of current against preClose. A zero preClose yields a zero rate, never a
// division fault.
func ComputeChange(current, preClose float64) (change, rate float64) {
	change = current - preClose
	if preClose == 0 {
		return change, 0
	}
	return change, change / preClose * 100
}

// -----------------------------------------------------------------------------

// IntradayGainPercent is the open-to-close gain of one bar, in percent.
func IntradayGainPercent(open, close float64) float64 {
	if open == 0 {
		return 0
	}
	return (close - open) / open * 100
}

// -----------------------------------------------------------------------------

// DeviationPercent measures how far price sits from a reference level
// (e.g. a moving average), in percent of the reference.
func DeviationPercent(price, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return (price - reference) / reference * 100
}
