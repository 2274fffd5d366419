package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/testutil"
)

// TestComputeOverRandomSets checks the bounds that hold for any well-formed
// attestation set, not just the handpicked cases: the price stays inside the
// reported range, scores stay inside basis-point range, and replaying the
// same input reproduces the same result bit for bit.
func TestComputeOverRandomSets(t *testing.T) {
	for i := 0; i < 50; i++ {
		attestations := testutil.RandomAttestationSet(2+i%9, 2000)

		result, err := consensus.Compute(attestations, 6600)
		require.NoError(t, err)

		lo, hi := attestations[0].Price, attestations[0].Price
		for _, att := range attestations[1:] {
			if att.Price.LT(lo) {
				lo = att.Price
			}
			if att.Price.GT(hi) {
				hi = att.Price
			}
		}
		assert.True(t, result.ConsensusPrice.GTE(lo), "price %s below range", result.ConsensusPrice)
		assert.True(t, result.ConsensusPrice.LTE(hi), "price %s above range", result.ConsensusPrice)
		assert.LessOrEqual(t, result.ConfidenceLevel, uint64(10000))
		assert.LessOrEqual(t, result.ConvergenceScore, uint64(10000))
		assert.Equal(t, result.TotalStake, result.ParticipatingStake)

		replay, err := consensus.Compute(attestations, 6600)
		require.NoError(t, err)
		assert.Equal(t, result, replay)
	}
}

// TestFilterOutliersOverRandomSets plants one far-off attestation in a
// converging set and checks the filter removes exactly that one while
// keeping the survivors in input order.
func TestFilterOutliersOverRandomSets(t *testing.T) {
	for i := 0; i < 50; i++ {
		attestations := testutil.RandomAttestationSet(3+i%7, 2000)
		attestations = append(attestations, testutil.RandomAttestation("outlier", 4000))

		kept := consensus.FilterOutliers(attestations, 1000)

		require.Len(t, kept, len(attestations)-1)
		cursor := 0
		for _, att := range attestations {
			if cursor < len(kept) && kept[cursor].OperatorID == att.OperatorID {
				cursor++
			}
		}
		assert.Equal(t, len(kept), cursor, "survivors out of input order")
		for _, att := range kept {
			assert.NotEqual(t, "outlier", att.OperatorID)
		}
	}
}
