package consensus

import (
	"sort"

	sdkmath "cosmossdk.io/math"
)

// FilterOutliers drops attestations whose price deviates from the round
// median by more than maxDeviationBps. Two or fewer attestations are returned
// unchanged: there is not enough data to judge an outlier. Survivors keep
// their input order.
func FilterOutliers(attestations []Attestation, maxDeviationBps uint64) []Attestation {
	if len(attestations) <= 2 {
		return attestations
	}

	median := medianPrice(attestations)
	if !median.IsPositive() {
		return attestations
	}

	maxDev := sdkmath.NewIntFromUint64(maxDeviationBps)
	kept := make([]Attestation, 0, len(attestations))
	for _, att := range attestations {
		if deviationInt(att.Price, median).LTE(maxDev) {
			kept = append(kept, att)
		}
	}
	return kept
}

// medianPrice sorts a copy of the attestation prices and returns the middle
// value, or the truncated mean of the two middle values for even counts.
func medianPrice(attestations []Attestation) sdkmath.Int {
	prices := make([]sdkmath.Int, len(attestations))
	for i, att := range attestations {
		prices[i] = att.Price
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LT(prices[j])
	})

	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		return prices[mid-1].Add(prices[mid]).QuoRaw(2)
	}
	return prices[mid]
}
