package consensus

import (
	"math"

	sdkmath "cosmossdk.io/math"
)

const (
	// Deviations above this floor start accruing the single-outlier penalty
	// in the convergence score.
	outlierPenaltyFloorBps = 2_000

	// Confidence component weights, in percent. They must sum to 100.
	convergenceWeightPct       = 40
	stakeDistributionWeightPct = 30
	operatorCountWeightPct     = 20
	reliabilityWeightPct       = 10
)

// deviationInt returns |price - reference| expressed in basis points of the
// reference, as an exact big integer. A non-positive reference yields zero;
// callers guard that state before trusting the result.
func deviationInt(price, reference sdkmath.Int) sdkmath.Int {
	if !reference.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return price.Sub(reference).Abs().MulRaw(BasisPointsDivisor).Quo(reference)
}

// DeviationBps returns |price - reference| in basis points of the reference,
// saturating at MaxUint64. A non-positive reference yields zero.
func DeviationBps(price, reference sdkmath.Int) uint64 {
	return saturateUint64(deviationInt(price, reference))
}

func saturateUint64(v sdkmath.Int) uint64 {
	if v.IsNegative() {
		return 0
	}
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// convergenceScore rates how tightly attestation prices cluster around the
// consensus price. The average deviation sets the base score; the single
// worst deviation accrues a separate penalty once it exceeds the outlier
// floor, so one manipulator cannot hide behind many honest reporters.
func convergenceScore(attestations []Attestation, consensusPrice sdkmath.Int) uint64 {
	if len(attestations) == 0 || !consensusPrice.IsPositive() {
		return 0
	}

	sumDev := sdkmath.ZeroInt()
	maxDev := sdkmath.ZeroInt()
	for _, att := range attestations {
		dev := deviationInt(att.Price, consensusPrice)
		sumDev = sumDev.Add(dev)
		if dev.GT(maxDev) {
			maxDev = dev
		}
	}

	avgDev := saturateUint64(sumDev.QuoRaw(int64(len(attestations))))

	var base uint64
	if avgDev < BasisPointsDivisor {
		base = BasisPointsDivisor - avgDev
	}

	var penalty uint64
	if worst := saturateUint64(maxDev); worst > outlierPenaltyFloorBps {
		penalty = (worst - outlierPenaltyFloorBps) / 2
	}

	if penalty >= base {
		return 0
	}
	return base - penalty
}

// stakeDistributionScore rates how evenly stake is spread across the
// participants using a Gini coefficient over stake amounts: the sum of all
// pairwise absolute stake differences normalized by n^2 * meanStake. A score
// of 10000 means perfectly equal stakes; 0 means fully centralized.
//
// The pairwise sum is quadratic in the participant count. That is fine for
// operator sets in the tens; a sorted-array O(n log n) Gini would scale
// further but rounds differently at truncation boundaries, so the exact
// pairwise form is kept deliberately.
func stakeDistributionScore(attestations []Attestation, totalStake sdkmath.Int) uint64 {
	n := len(attestations)
	if n < 2 || !totalStake.IsPositive() {
		return 0
	}

	meanStake := totalStake.QuoRaw(int64(n))
	if meanStake.IsZero() {
		return 0
	}

	sumDiffs := sdkmath.ZeroInt()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sumDiffs = sumDiffs.Add(attestations[i].Stake.Sub(attestations[j].Stake).Abs())
		}
	}

	divisor := meanStake.MulRaw(int64(n)).MulRaw(int64(n))
	giniBps := saturateUint64(sumDiffs.MulRaw(BasisPointsDivisor).Quo(divisor))
	if giniBps >= BasisPointsDivisor {
		return 0
	}
	return BasisPointsDivisor - giniBps
}

// operatorCountScore maps the participant count to a saturating confidence
// contribution. The stepwise curve is a compatibility-fixed lookup, not a
// formula.
func operatorCountScore(count int) uint64 {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 2_000
	case count == 2:
		return 4_000
	case count == 3:
		return 6_000
	case count == 4:
		return 7_500
	default:
		return 10_000
	}
}

// averageReliability is the unweighted arithmetic mean of the attestations'
// reliability scores.
func averageReliability(attestations []Attestation) uint64 {
	if len(attestations) == 0 {
		return 0
	}
	var sum uint64
	for _, att := range attestations {
		sum += att.Reliability
	}
	return sum / uint64(len(attestations))
}
