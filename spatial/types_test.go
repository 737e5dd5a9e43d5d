// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Point
		wantKm  float64
		epsilon float64
	}{
		{
			name:    "identical coordinates",
			a:       Point{Lat: 60.1699, Lng: 24.9384},
			b:       Point{Lat: 60.1699, Lng: 24.9384},
			wantKm:  0,
			epsilon: 0,
		},
		{
			name:    "nearby duplicate candidates",
			a:       Point{Lat: 60.1699, Lng: 24.9384},
			b:       Point{Lat: 60.1699, Lng: 24.9395},
			wantKm:  0.061,
			epsilon: 0.02,
		},
		{
			name:    "distinct spots in Helsinki",
			a:       Point{Lat: 60.1699, Lng: 24.9384},
			b:       Point{Lat: 60.1750, Lng: 24.9300},
			wantKm:  0.73,
			epsilon: 0.05,
		},
		{
			name:    "Helsinki to Tampere",
			a:       Point{Lat: 60.1699, Lng: 24.9384},
			b:       Point{Lat: 61.4978, Lng: 23.7610},
			wantKm:  161,
			epsilon: 5,
		},
		{
			name:    "antipodal-ish points stay finite",
			a:       Point{Lat: 60.0, Lng: 24.0},
			b:       Point{Lat: -60.0, Lng: -156.0},
			wantKm:  earthRadiusKm * math.Pi,
			epsilon: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceKm(tt.b)

			assert.False(t, math.IsNaN(got), "distance must be defined")
			assert.GreaterOrEqual(t, got, 0.0)
			assert.InDelta(t, tt.wantKm, got, tt.epsilon)

			// symmetric
			assert.InDelta(t, got, tt.b.DistanceKm(tt.a), 1e-9)
		})
	}
}

func TestDistanceKmDuplicateThreshold(t *testing.T) {
	// the pair the deduplication engine must treat as the same physical spot
	a := Point{Lat: 60.1699, Lng: 24.9384}
	b := Point{Lat: 60.1699, Lng: 24.9395}
	assert.Less(t, a.DistanceKm(b), 0.1)

	// and the pair it must keep apart
	c := Point{Lat: 60.1750, Lng: 24.9300}
	assert.Greater(t, a.DistanceKm(c), 0.1)
}

func TestPointIsValid(t *testing.T) {
	assert.True(t, Point{Lat: 60.1699, Lng: 24.9384}.IsValid())
	assert.True(t, Point{Lat: -90, Lng: 180}.IsValid())
	assert.False(t, Point{Lat: 91, Lng: 0}.IsValid())
	assert.False(t, Point{Lat: 0, Lng: -181}.IsValid())
	assert.False(t, Point{Lat: math.NaN(), Lng: 0}.IsValid())
	assert.False(t, Point{Lat: 0, Lng: math.Inf(1)}.IsValid())
}

func TestPointScan(t *testing.T) {
	var p Point

	require.NoError(t, p.Scan([]byte("POINT (24.9384 60.1699)")))
	assert.InDelta(t, 60.1699, p.Lat, 1e-6)
	assert.InDelta(t, 24.9384, p.Lng, 1e-6)

	require.NoError(t, p.Scan(map[string]interface{}{"x": 23.7610, "y": 61.4978}))
	assert.InDelta(t, 61.4978, p.Lat, 1e-6)

	require.NoError(t, p.Scan(nil))
	assert.Zero(t, p.Lat)
	assert.Zero(t, p.Lng)

	assert.Error(t, p.Scan(42))
}
