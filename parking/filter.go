// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import "sort"

// Filter retains the spots that satisfy every hard constraint of the
// requirements. A missing height or weight limit is permissive: it never
// disqualifies a spot. Pure function, the input slice is not modified.
func Filter(spots []Spot, reqs Requirements) []Spot {
	suitable := make([]Spot, 0, len(spots))

	for _, spot := range spots {
		if spot.MaxHeight != nil && *spot.MaxHeight < reqs.Height {
			continue
		}

		if spot.MaxWeight != nil && *spot.MaxWeight < reqs.Weight {
			continue
		}

		if reqs.NeedsFacilities && !spot.HasFacilities {
			continue
		}

		if reqs.NeedsOvernight && !spot.OvernightAllowed {
			continue
		}

		suitable = append(suitable, spot)
	}

	return suitable
}

// Rank orders spots by descending confidence. The sort is stable: spots with
// equal confidence keep the order the deduplication engine produced.
func Rank(spots []Spot) {
	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].Confidence > spots[j].Confidence
	})
}
