package consensus

import (
	sdkmath "cosmossdk.io/math"
)

// Compute aggregates a round of attestations into a consensus price and an
// overall confidence level.
//
// The price is the reliability-weighted stake average: each attestation
// weighs stake * reliability / 10000. When no attestation carries reliability
// weight the price falls back to pure stake weighting, making reliability a
// tie-breaking refinement rather than a hard requirement. The confidence
// level combines convergence (40%), stake distribution (30%), operator count
// (20%) and average reliability (10%), each pre-scaled before summing and the
// sum clamped to 10000.
//
// Compute is a pure function of its inputs: identical attestation lists yield
// bit-identical results. An empty list or a threshold below
// MinConsensusThresholdBps is a hard input error; a round with zero total
// stake is an expected state and yields a zero result without consensus.
func Compute(attestations []Attestation, thresholdBps uint64) (Result, error) {
	if len(attestations) == 0 {
		return zeroResult(), ErrNoAttestations
	}
	if thresholdBps < MinConsensusThresholdBps {
		return zeroResult(), ErrThresholdTooLow
	}

	totalStake := sdkmath.ZeroInt()
	for _, att := range attestations {
		totalStake = totalStake.Add(att.Stake)
	}
	if totalStake.IsZero() {
		return zeroResult(), nil
	}

	consensusPrice := weightedPrice(attestations, totalStake)

	convergence := convergenceScore(attestations, consensusPrice)
	stakeDist := stakeDistributionScore(attestations, totalStake)
	opCount := operatorCountScore(len(attestations))
	reliability := averageReliability(attestations)

	confidence := convergence*convergenceWeightPct/100 +
		stakeDist*stakeDistributionWeightPct/100 +
		opCount*operatorCountWeightPct/100 +
		reliability*reliabilityWeightPct/100
	if confidence > BasisPointsDivisor {
		confidence = BasisPointsDivisor
	}

	return Result{
		ConsensusPrice:     consensusPrice,
		TotalStake:         totalStake,
		ParticipatingStake: totalStake,
		ConfidenceLevel:    confidence,
		ConvergenceScore:   convergence,
		HasConsensus:       confidence >= thresholdBps,
	}, nil
}

// weightedPrice computes the reliability-weighted average price, falling back
// to pure stake weighting when the total reliability weight is zero. The
// per-attestation weight truncates before summing so results match across
// evaluators.
func weightedPrice(attestations []Attestation, totalStake sdkmath.Int) sdkmath.Int {
	weightedSum := sdkmath.ZeroInt()
	totalWeight := sdkmath.ZeroInt()
	for _, att := range attestations {
		weight := att.Stake.MulRaw(int64(att.Reliability)).QuoRaw(BasisPointsDivisor)
		weightedSum = weightedSum.Add(att.Price.Mul(weight))
		totalWeight = totalWeight.Add(weight)
	}
	if totalWeight.IsPositive() {
		return weightedSum.Quo(totalWeight)
	}

	stakeSum := sdkmath.ZeroInt()
	for _, att := range attestations {
		stakeSum = stakeSum.Add(att.Price.Mul(att.Stake))
	}
	return stakeSum.Quo(totalStake)
}
