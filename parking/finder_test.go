// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	point *spatial.Point
	err   error
}

func (g *stubGeocoder) Resolve(_ context.Context, _ string) (*spatial.Point, error) {
	return g.point, g.err
}

type stubSource struct {
	name  string
	spots []Spot
	err   error
	calls atomic.Int64
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, _ spatial.Point, _ float64) ([]Spot, error) {
	s.calls.Add(1)

	return s.spots, s.err
}

func helsinki() *spatial.Point {
	return &spatial.Point{Lat: 60.1699, Lng: 24.9384}
}

func TestSearchSuccess(t *testing.T) {
	osm := &stubSource{name: "osm", spots: []Spot{
		spot("garage", 60.1699, 24.9384, 0.8),
		spot("lot", 60.1750, 24.9300, 0.6),
	}}
	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{osm}, NewCache())

	result := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Spots, 2)
	assert.Equal(t, "garage", result.Spots[0].Name, "ranked by confidence descending")
}

func TestSearchUnresolvableLocationIsNoResults(t *testing.T) {
	finder := NewFinder(&stubGeocoder{}, nil, NewCache())

	result := finder.Search(context.Background(), "Atlantis", DefaultRequirements())

	assert.Equal(t, StatusNoResults, result.Status)
	assert.Equal(t, "Atlantis", result.Params.Location)
	assert.Empty(t, result.Spots)
}

func TestSearchGeocoderErrorIsNoResults(t *testing.T) {
	finder := NewFinder(&stubGeocoder{err: errors.New("nominatim down")}, nil, NewCache())

	result := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	assert.Equal(t, StatusNoResults, result.Status)
}

func TestSearchInvalidRequirementsIsError(t *testing.T) {
	finder := NewFinder(&stubGeocoder{point: helsinki()}, nil, NewCache())

	result := finder.Search(context.Background(), "Helsinki", Requirements{RadiusKm: 0})

	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.Message)
}

func TestSearchEmptyConnectorsIsNoResults(t *testing.T) {
	empty := &stubSource{name: "osm"}
	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{empty}, NewCache())

	result := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	assert.Equal(t, StatusNoResults, result.Status)
	assert.NotEmpty(t, result.Suggestion)
	assert.InDelta(t, 10.0, result.Params.Requirements.RadiusKm, 1e-9,
		"attempted parameters travel with the outcome")
}

func TestSearchConnectorFailureIsIsolated(t *testing.T) {
	failing := &stubSource{name: "places", err: errors.New("quota exceeded")}
	working := &stubSource{name: "osm", spots: []Spot{spot("lot", 60.1699, 24.9384, 0.8)}}

	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{failing, working}, NewCache())

	result := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Len(t, result.Spots, 1)
}

func TestSearchMergePriorityFollowsSourceOrder(t *testing.T) {
	// same physical spot from two sources with equal confidence: the
	// connector configured first must win the tie regardless of which
	// goroutine finishes first
	osm := &stubSource{name: "osm", spots: []Spot{spot("from-osm", 60.1699, 24.9384, 0.8)}}
	city := &stubSource{name: "city", spots: []Spot{spot("from-city", 60.1699, 24.9386, 0.8)}}

	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{osm, city}, NewCache())

	result := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Spots, 1)
	assert.Equal(t, "from-osm", result.Spots[0].Name)
}

func TestSearchCacheHitSkipsConnectors(t *testing.T) {
	source := &stubSource{name: "osm", spots: []Spot{spot("lot", 60.1699, 24.9384, 0.8)}}
	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{source}, NewCache())

	first := finder.Search(context.Background(), "Helsinki", DefaultRequirements())
	second := finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	assert.Equal(t, StatusSuccess, first.Status)
	assert.Equal(t, StatusSuccess, second.Status)
	assert.Equal(t, int64(1), source.calls.Load(), "second search must reuse the cached set")
}

func TestSearchCacheIsPreFilter(t *testing.T) {
	// the cache stores the deduplicated set before filtering, so a second
	// request with different requirements at the same area still works
	noOvernight := spot("day-lot", 60.1699, 24.9384, 0.8)
	noOvernight.OvernightAllowed = false

	overnight := spot("camp", 60.1750, 24.9300, 0.9)
	overnight.OvernightAllowed = true

	source := &stubSource{name: "osm", spots: []Spot{noOvernight, overnight}}
	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{source}, NewCache())

	strict := DefaultRequirements() // needs overnight
	relaxed := strict
	relaxed.NeedsOvernight = false

	first := finder.Search(context.Background(), "Helsinki", strict)
	require.Equal(t, StatusSuccess, first.Status)
	require.Len(t, first.Spots, 1)

	second := finder.Search(context.Background(), "Helsinki", relaxed)
	require.Equal(t, StatusSuccess, second.Status)
	assert.Len(t, second.Spots, 2)
	assert.Equal(t, int64(1), source.calls.Load())
}

func TestSearchProgressCallback(t *testing.T) {
	source := &stubSource{name: "osm", spots: []Spot{spot("lot", 60.1699, 24.9384, 0.8)}}
	finder := NewFinder(&stubGeocoder{point: helsinki()}, []Source{source}, NewCache())

	var reported atomic.Int64
	finder.Progress = func(name string, found int, err error) {
		assert.Equal(t, "osm", name)
		assert.Equal(t, 1, found)
		assert.NoError(t, err)
		reported.Add(1)
	}

	finder.Search(context.Background(), "Helsinki", DefaultRequirements())

	assert.Equal(t, int64(1), reported.Load())
}
