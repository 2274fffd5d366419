package model

import (
	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

const ConsensusStateCollection = "consensus_state"

// ConsensusStateDocument is the latest consensus snapshot for one pool.
// Prices and stakes are stored as decimal strings to keep the full 18
// decimal fixed-point precision.
type ConsensusStateDocument struct {
	PoolID             string                `bson:"_id"`
	Price              string                `bson:"price"`
	TotalStake         string                `bson:"total_stake"`
	ParticipatingStake string                `bson:"participating_stake"`
	ConfidenceLevel    uint64                `bson:"confidence_level"`
	ConvergenceScore   uint64                `bson:"convergence_score"`
	AttestationCount   int                   `bson:"attestation_count"`
	Status             types.ConsensusStatus `bson:"status"`
	ObservedAt         int64                 `bson:"observed_at"`
	ExpiresAt          int64                 `bson:"expires_at"`
}

func FromRoundOutcome(
	poolID string,
	result consensus.Result,
	attestationCount int,
	observedAt, expiresAt int64,
) *ConsensusStateDocument {
	return &ConsensusStateDocument{
		PoolID:             poolID,
		Price:              result.ConsensusPrice.String(),
		TotalStake:         result.TotalStake.String(),
		ParticipatingStake: result.ParticipatingStake.String(),
		ConfidenceLevel:    result.ConfidenceLevel,
		ConvergenceScore:   result.ConvergenceScore,
		AttestationCount:   attestationCount,
		Status:             types.StatusForRound(result.HasConsensus),
		ObservedAt:         observedAt,
		ExpiresAt:          expiresAt,
	}
}
