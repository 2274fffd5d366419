package consensus

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(whole ...int64) ([]sdkmath.Int, []int64) {
	prices := make([]sdkmath.Int, len(whole))
	timestamps := make([]int64, len(whole))
	for i, w := range whole {
		prices[i] = price18(w)
		timestamps[i] = 1_700_000_000 + int64(i)*60
	}
	return prices, timestamps
}

func TestDetectManipulation(t *testing.T) {
	t.Run("price doubling trips the max-step alert", func(t *testing.T) {
		prices, timestamps := series(2000, 2000, 4000)

		finding, err := DetectManipulation(prices, timestamps)
		require.NoError(t, err)
		assert.True(t, finding.Manipulated)
		assert.Equal(t, uint64(10_000), finding.MaxDeviationBps)
		assert.Equal(t, uint64(5_000), finding.AvgVolatilityBps)
		assert.Equal(t, uint64(7_500), finding.SuspicionLevel)
	})

	t.Run("sustained churn trips the average alert", func(t *testing.T) {
		prices, timestamps := series(2000, 2500, 2000, 2500)

		finding, err := DetectManipulation(prices, timestamps)
		require.NoError(t, err)
		assert.True(t, finding.Manipulated)
		// steps 2500, 2000, 2500 bps: loud on average, quiet at the peak
		assert.Equal(t, uint64(2333), finding.AvgVolatilityBps)
		assert.Equal(t, uint64(2500), finding.MaxDeviationBps)
		assert.Equal(t, uint64(2416), finding.SuspicionLevel)
	})

	t.Run("steady series stays clean", func(t *testing.T) {
		prices, timestamps := series(2000, 2001, 2002)

		finding, err := DetectManipulation(prices, timestamps)
		require.NoError(t, err)
		assert.False(t, finding.Manipulated)
		assert.Equal(t, uint64(4), finding.AvgVolatilityBps)
		assert.Equal(t, uint64(5), finding.MaxDeviationBps)
		assert.Equal(t, uint64(4), finding.SuspicionLevel)
	})

	t.Run("drift below both alerts stays clean", func(t *testing.T) {
		prices, timestamps := series(2000, 2300, 2600)

		finding, err := DetectManipulation(prices, timestamps)
		require.NoError(t, err)
		assert.False(t, finding.Manipulated)
		assert.Equal(t, uint64(1402), finding.AvgVolatilityBps)
		assert.Equal(t, uint64(1500), finding.MaxDeviationBps)
	})

	t.Run("mismatched series lengths", func(t *testing.T) {
		prices, timestamps := series(2000, 2100, 2200)
		_, err := DetectManipulation(prices, timestamps[:2])
		require.ErrorIs(t, err, ErrLengthMismatch)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("series too short to judge", func(t *testing.T) {
		prices, timestamps := series(2000, 2100)
		_, err := DetectManipulation(prices, timestamps)
		require.ErrorIs(t, err, ErrSeriesTooShort)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
