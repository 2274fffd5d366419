// Package consensus implements stake-weighted price consensus over operator
// attestations: weighted aggregation, confidence scoring, outlier filtering,
// time-series manipulation detection and per-action price validation.
//
// Every function in this package is pure and uses exact integer arithmetic
// (cosmossdk.io/math big integers for prices and stakes, basis points for
// scores) so that independent evaluators produce bit-identical results from
// identical inputs.
package consensus

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// BasisPointsDivisor is the denominator for all percentage-like values:
	// scores, deviations and reliability are expressed in units of 1/10000.
	BasisPointsDivisor = 10_000

	// MinConsensusThresholdBps is the lowest accepted consensus threshold,
	// a simple majority plus a safety margin. Compute rejects anything lower.
	MinConsensusThresholdBps = 5_100
)

// Attestation is a single operator's already-authenticated price report.
// Prices are fixed-point integers with 18 fractional decimal digits; stake is
// a non-negative integer amount; reliability is the operator's historical
// accuracy in basis points. Attestations are immutable once submitted to a
// consensus round.
type Attestation struct {
	OperatorID  string
	Price       sdkmath.Int
	Stake       sdkmath.Int
	Timestamp   int64
	Reliability uint64
}

// Result is the outcome of a single consensus computation.
type Result struct {
	ConsensusPrice     sdkmath.Int
	TotalStake         sdkmath.Int
	ParticipatingStake sdkmath.Int
	ConfidenceLevel    uint64
	ConvergenceScore   uint64
	HasConsensus       bool
}

func zeroResult() Result {
	return Result{
		ConsensusPrice:     sdkmath.ZeroInt(),
		TotalStake:         sdkmath.ZeroInt(),
		ParticipatingStake: sdkmath.ZeroInt(),
	}
}
