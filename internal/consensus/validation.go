package consensus

import (
	sdkmath "cosmossdk.io/math"
)

// Validation denial reasons. These strings travel into events and API
// responses and are fixed for observability parity.
const (
	ReasonLowConfidence     = "Low confidence"
	ReasonStalePrice        = "Stale price data"
	ReasonExcessDeviation   = "Price deviation too high"
	ReasonInsufficientStake = "Insufficient stake"
)

// ValidationConfig is the per-call view of a pool's oracle configuration used
// to gate a single dependent action.
type ValidationConfig struct {
	MinConfidence   uint64
	MaxStaleness    int64
	MaxDeviationBps uint64
}

// ValidationResult is the allow/deny decision for one proposed price. A
// denial is a routine outcome, not an error: Reason names the first check
// that failed. DeviationBps carries the measured deviation whenever the
// deviation check ran.
type ValidationResult struct {
	Valid        bool
	DeviationBps uint64
	Reason       string
}

// ValidatePrice gates one proposed price against an existing consensus
// snapshot. Checks run in fixed order and the first failure wins: confidence
// floor, then snapshot staleness, then deviation from the consensus price.
func ValidatePrice(
	currentPrice, consensusPrice sdkmath.Int,
	confidenceLevel uint64,
	observedAt, now int64,
	cfg ValidationConfig,
) ValidationResult {
	if confidenceLevel < cfg.MinConfidence {
		return ValidationResult{Reason: ReasonLowConfidence}
	}

	if now-observedAt > cfg.MaxStaleness {
		return ValidationResult{Reason: ReasonStalePrice}
	}

	deviation := DeviationBps(currentPrice, consensusPrice)
	if deviation > cfg.MaxDeviationBps {
		return ValidationResult{DeviationBps: deviation, Reason: ReasonExcessDeviation}
	}

	return ValidationResult{Valid: true, DeviationBps: deviation}
}

// CombinedPrice is the weighted aggregate of several independent price
// sources plus a consistency score describing how much the sources agree.
type CombinedPrice struct {
	WeightedPrice    sdkmath.Int
	ConsistencyScore uint64
}

// CombineSources merges prices from multiple independent sources into a
// weighted average. Consistency is 10000 minus the weighted average deviation
// of each source from the combined price, clamped at zero. Mismatched or
// empty inputs are hard input errors; an all-zero weight set is an expected
// state and yields a zero result.
func CombineSources(prices []sdkmath.Int, weights []sdkmath.Int) (CombinedPrice, error) {
	if len(prices) != len(weights) {
		return CombinedPrice{WeightedPrice: sdkmath.ZeroInt()}, ErrLengthMismatch
	}
	if len(prices) == 0 {
		return CombinedPrice{WeightedPrice: sdkmath.ZeroInt()}, ErrNoSources
	}

	weightedSum := sdkmath.ZeroInt()
	totalWeight := sdkmath.ZeroInt()
	for i := range prices {
		weightedSum = weightedSum.Add(prices[i].Mul(weights[i]))
		totalWeight = totalWeight.Add(weights[i])
	}
	if !totalWeight.IsPositive() {
		return CombinedPrice{WeightedPrice: sdkmath.ZeroInt()}, nil
	}

	combined := weightedSum.Quo(totalWeight)

	weightedDev := sdkmath.ZeroInt()
	for i := range prices {
		weightedDev = weightedDev.Add(deviationInt(prices[i], combined).Mul(weights[i]))
	}
	avgDev := saturateUint64(weightedDev.Quo(totalWeight))

	var consistency uint64
	if avgDev < BasisPointsDivisor {
		consistency = BasisPointsDivisor - avgDev
	}

	return CombinedPrice{
		WeightedPrice:    combined,
		ConsistencyScore: consistency,
	}, nil
}
