// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
)

func TestGooglePlacesSkipsWithoutKey(t *testing.T) {
	places := NewGooglePlacesWithURL("", "http://invalid.test", nil)

	spots, err := places.Search(context.Background(), spatial.Point{Lat: 60.17, Lng: 24.94}, 5)
	require.NoError(t, err)
	assert.Empty(t, spots)
}

func TestGooglePlacesSearch(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		require.Equal(t, "/nearbysearch/json", r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		require.Equal(t, "5000", r.URL.Query().Get("radius"))

		placeType := r.URL.Query().Get("type")

		w.Header().Set("Content-Type", "application/json")

		switch placeType {
		case "campground":
			fmt.Fprint(w, `{"status": "OK", "results": [
				{"name": "Rastila Camping", "vicinity": "Karavaanikatu 4", "rating": 4.2,
				 "geometry": {"location": {"lat": 60.2072, "lng": 25.1206}}},
				{"name": "No geometry place"}
			]}`)
		case "parking":
			fmt.Fprint(w, `{"status": "OK", "results": [
				{"geometry": {"location": {"lat": 60.1700, "lng": 24.9400}}}
			]}`)
		default:
			fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
		}
	}))
	defer server.Close()

	places := NewGooglePlacesWithURL("secret", server.URL, server.Client())

	spots, err := places.Search(context.Background(), spatial.Point{Lat: 60.1699, Lng: 24.9384}, 5)
	require.NoError(t, err)
	require.Len(t, spots, 2)
	assert.EqualValues(t, int64(len(placeSearchTypes)), requests.Load())

	lot := spots[0]
	assert.Equal(t, "Unnamed location", lot.Name)
	assert.Equal(t, "Unknown address", lot.Address)
	assert.Equal(t, parking.TypeParkingLot, lot.Type)
	assert.False(t, lot.HasFacilities)
	assert.False(t, lot.OvernightAllowed)
	assert.Equal(t, []string{"Rating: N/A"}, lot.Restrictions)

	camp := spots[1]
	assert.Equal(t, "Rastila Camping", camp.Name)
	assert.Equal(t, "Karavaanikatu 4", camp.Address)
	assert.Equal(t, parking.TypeCampsite, camp.Type)
	assert.True(t, camp.HasFacilities)
	assert.True(t, camp.OvernightAllowed)
	assert.Equal(t, []string{"Rating: 4.2"}, camp.Restrictions)
	assert.Equal(t, placesSourceName, camp.Source)
	assert.InDelta(t, placesConfidence, camp.Confidence, 1e-9)
	assert.Nil(t, camp.MaxHeight)
	assert.Nil(t, camp.MaxWeight)
}

func TestGooglePlacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	places := NewGooglePlacesWithURL("secret", server.URL, server.Client())

	_, err := places.Search(context.Background(), spatial.Point{Lat: 60.17, Lng: 24.94}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
