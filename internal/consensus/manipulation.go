package consensus

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// minSeriesPoints is the shortest price series DetectManipulation accepts.
	minSeriesPoints = 3

	// avgVolatilityAlertBps and maxDeviationAlertBps are the step-deviation
	// levels above which a series is flagged as manipulated.
	avgVolatilityAlertBps = 2_000
	maxDeviationAlertBps  = 5_000
)

// Finding is the outcome of scanning a price series for manipulation
// patterns.
type Finding struct {
	Manipulated      bool
	SuspicionLevel   uint64
	AvgVolatilityBps uint64
	MaxDeviationBps  uint64
}

// DetectManipulation scans a chronological price series for suspicious
// volatility. Each step deviation is the basis-point move between consecutive
// prices relative to the earlier one; the series is flagged when the average
// step exceeds 2000 bps or any single step exceeds 5000 bps. The suspicion
// level is the mean of the average and the worst step.
//
// This is a standalone diagnostic over time, independent of any single
// consensus round; timestamps are validated for shape only, windowing is the
// caller's concern. Series shorter than three points or mismatched input
// lengths are hard input errors.
func DetectManipulation(prices []sdkmath.Int, timestamps []int64) (Finding, error) {
	if len(prices) != len(timestamps) {
		return Finding{}, ErrLengthMismatch
	}
	if len(prices) < minSeriesPoints {
		return Finding{}, ErrSeriesTooShort
	}

	sumDev := sdkmath.ZeroInt()
	maxDev := sdkmath.ZeroInt()
	for i := 1; i < len(prices); i++ {
		dev := deviationInt(prices[i], prices[i-1])
		sumDev = sumDev.Add(dev)
		if dev.GT(maxDev) {
			maxDev = dev
		}
	}

	steps := int64(len(prices) - 1)
	avg := sumDev.QuoRaw(steps)
	suspicion := avg.Add(maxDev).QuoRaw(2)

	avgBps := saturateUint64(avg)
	maxBps := saturateUint64(maxDev)

	return Finding{
		Manipulated:      avgBps > avgVolatilityAlertBps || maxBps > maxDeviationAlertBps,
		SuspicionLevel:   saturateUint64(suspicion),
		AvgVolatilityBps: avgBps,
		MaxDeviationBps:  maxBps,
	}, nil
}
