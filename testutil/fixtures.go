package testutil

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

// Price18 builds an 18-decimal fixed-point price from a whole-unit amount.
func Price18(whole int64) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(whole, 18)
}

// RandomAttestation generates an attestation with a price in a narrow band
// around basePrice so generated sets converge by default.
func RandomAttestation(operatorID string, basePrice int64) consensus.Attestation {
	return consensus.Attestation{
		OperatorID:  operatorID,
		Price:       Price18(basePrice + int64(gofakeit.Number(-2, 2))),
		Stake:       Price18(int64(gofakeit.Number(1, 100))),
		Timestamp:   time.Now().Unix(),
		Reliability: uint64(gofakeit.Number(5000, 10000)),
	}
}

// RandomAttestationSet generates count attestations from distinct operators.
func RandomAttestationSet(count int, basePrice int64) []consensus.Attestation {
	attestations := make([]consensus.Attestation, 0, count)
	for i := 0; i < count; i++ {
		attestations = append(attestations, RandomAttestation(gofakeit.UUID(), basePrice))
	}
	return attestations
}

func RandomOracleConfig(poolID string) *model.OracleConfigDocument {
	return &model.OracleConfigDocument{
		PoolID:                poolID,
		Enabled:               true,
		ConsensusThresholdBps: uint64(gofakeit.Number(5100, 9000)),
		MaxPriceDeviationBps:  uint64(gofakeit.Number(100, 2000)),
		MaxStalenessSeconds:   int64(gofakeit.Number(60, 3600)),
		MinStakeRequired:      Price18(int64(gofakeit.Number(1, 50))).String(),
	}
}

func RandomOperator() *model.OperatorDocument {
	return &model.OperatorDocument{
		OperatorID:  gofakeit.UUID(),
		State:       types.OperatorStateActive,
		Reliability: uint64(gofakeit.Number(0, 10000)),
		Rounds:      uint64(gofakeit.Number(0, 1000)),
		LastSeen:    time.Now().Unix(),
	}
}
