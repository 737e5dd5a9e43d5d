// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import (
	"fmt"
	"math"
	"testing"

	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spot(name string, lat, lng, confidence float64) Spot {
	return Spot{
		Name:       name,
		Type:       TypeParkingLot,
		Position:   spatial.Point{Lat: lat, Lng: lng},
		Source:     "test",
		Confidence: confidence,
	}
}

func TestMergeNearbyCandidatesCollapse(t *testing.T) {
	// ~60m apart in central Helsinki: the same physical spot
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("osm", 60.1699, 24.9384, 0.7),
		spot("official", 60.1699, 24.9395, 0.95),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "official", merged[0].Name, "higher confidence record must win")
	assert.InDelta(t, 0.95, merged[0].Confidence, 1e-9)
}

func TestMergeDistantCandidatesKept(t *testing.T) {
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("a", 60.1699, 24.9384, 0.8),
		spot("b", 60.1750, 24.9300, 0.8),
	})

	assert.Len(t, merged, 2)
}

func TestMergeConfidenceTieKeepsFirstArrival(t *testing.T) {
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("first", 60.1699, 24.9384, 0.8),
		spot("second", 60.1699, 24.9386, 0.8),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].Name)
}

func TestMergeLowerConfidenceDiscarded(t *testing.T) {
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("strong", 60.1699, 24.9384, 0.9),
		spot("weak", 60.1699, 24.9386, 0.5),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "strong", merged[0].Name)
}

func TestMergeReplacementMovesSpotToEnd(t *testing.T) {
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("a", 60.1699, 24.9384, 0.5),
		spot("far", 60.2500, 24.9384, 0.8),
		spot("a-better", 60.1699, 24.9385, 0.9),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, "far", merged[0].Name)
	assert.Equal(t, "a-better", merged[1].Name, "replacement is appended at the end")
}

func TestMergeNearestMatchWins(t *testing.T) {
	// two accepted spots ~177m apart, the incoming candidate ~33m from the
	// second and ~144m from the first: only its nearest match is replaced
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("a", 60.1699, 24.93840, 0.9),
		spot("b", 60.1699, 24.94160, 0.9),
		spot("incoming", 60.1699, 24.94100, 0.95),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Name)
	assert.Equal(t, "incoming", merged[1].Name, "incoming must replace its nearest match")
}

func TestMergeReplacementEvictsAllWithinThreshold(t *testing.T) {
	// the incoming candidate lies within the threshold of both accepted
	// spots and beats them both: both must go, or the survivors would sit
	// ~94m apart and a second merge would collapse them again
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("a", 60.1699, 24.93840, 0.9),
		spot("b", 60.1699, 24.94160, 0.9),
		spot("incoming", 60.1699, 24.94010, 0.95),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "incoming", merged[0].Name)

	again := deduper.Merge(merged)
	assert.Equal(t, merged, again, "merging its own output must be a no-op")
}

func TestMergeCascadeStopsAtStrongerIncumbent(t *testing.T) {
	// the incoming candidate evicts the weaker of its two neighbours but is
	// then dropped by the stronger one
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("strong", 60.1699, 24.93840, 0.97),
		spot("weak", 60.1699, 24.94160, 0.5),
		spot("incoming", 60.1699, 24.94010, 0.9),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "strong", merged[0].Name)
}

func TestMergeIdempotent(t *testing.T) {
	deduper := NewDeduper()

	candidates := []Spot{
		spot("a", 60.1699, 24.9384, 0.8),
		spot("a2", 60.1699, 24.9386, 0.7),
		spot("b", 60.1750, 24.9300, 0.9),
		spot("c", 60.1800, 24.9500, 0.6),
		spot("c2", 60.1801, 24.9501, 0.95),
	}

	merged := deduper.Merge(candidates)
	again := deduper.Merge(merged)

	assert.Equal(t, merged, again, "merging its own output must be a no-op")

	for i := range again {
		for j := i + 1; j < len(again); j++ {
			km := again[i].Position.DistanceKm(again[j].Position)
			assert.GreaterOrEqual(t, km, DuplicateThresholdKm,
				"no two merged spots may be within the duplicate threshold")
		}
	}
}

func TestMergeDropsMalformedCandidates(t *testing.T) {
	deduper := NewDeduper()
	merged := deduper.Merge([]Spot{
		spot("ok", 60.1699, 24.9384, 0.8),
		spot("bad-coords", math.NaN(), 24.9384, 0.8),
		spot("bad-confidence", 60.1750, 24.9300, 1.5),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "ok", merged[0].Name)
}

func TestMergeManyClusters(t *testing.T) {
	deduper := NewDeduper()

	var candidates []Spot

	// 40 clusters of 3 candidates each, clusters ~1km apart
	for i := 0; i < 40; i++ {
		base := 60.0 + float64(i)*0.01
		for j := 0; j < 3; j++ {
			candidates = append(candidates,
				spot(fmt.Sprintf("c%d-%d", i, j), base+float64(j)*0.0001, 24.9, 0.5+float64(j)*0.1))
		}
	}

	merged := deduper.Merge(candidates)
	require.Len(t, merged, 40)

	for _, m := range merged {
		assert.InDelta(t, 0.7, m.Confidence, 1e-9, "highest confidence candidate wins per cluster")
	}
}

func TestMergeEmptyInput(t *testing.T) {
	assert.Empty(t, NewDeduper().Merge(nil))
	assert.Empty(t, NewDeduper().Merge([]Spot{}))
}
