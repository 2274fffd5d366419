package model

import (
	"github.com/stakequorum/consensus-oracle/internal/types"
)

const OperatorCollection = "operators"

// OperatorDocument tracks one attestation operator's standing across pools.
// Reliability is a 0..10000 score smoothed over rounds.
type OperatorDocument struct {
	OperatorID  string              `bson:"_id"`
	State       types.OperatorState `bson:"state"`
	Reliability uint64              `bson:"reliability"`
	Rounds      uint64              `bson:"rounds"`
	LastSeen    int64               `bson:"last_seen"`
}

func NewOperatorDocument(operatorID string, state types.OperatorState, reliability uint64) *OperatorDocument {
	return &OperatorDocument{
		OperatorID:  operatorID,
		State:       state,
		Reliability: reliability,
	}
}
