// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/mkarppinen/vanpaikka/utils/httputils"
)

const (
	placesURL        = "https://maps.googleapis.com/maps/api/place"
	placesConfidence = 0.7
	placesSourceName = "Google Places"
)

// placeSearchTypes are the nearby-search categories relevant to campers.
var placeSearchTypes = []string{"parking", "campground", "rv_park", "rest_area"}

// GooglePlaces queries the Places nearby search API. Without an API key the
// connector is inert and contributes no records.
type GooglePlaces struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGooglePlaces(apiKey string, options *Options) *GooglePlaces {
	return &GooglePlaces{
		apiKey:     apiKey,
		baseURL:    placesURL,
		httpClient: newConnectorClient(options),
	}
}

// NewGooglePlacesWithURL is used by tests to point at a local server.
func NewGooglePlacesWithURL(apiKey, baseURL string, client *http.Client) *GooglePlaces {
	if client == nil {
		client = httputils.NewClient(nil)
	}

	return &GooglePlaces{apiKey: apiKey, baseURL: baseURL, httpClient: client}
}

// Name implements parking.Source.
func (g *GooglePlaces) Name() string { return "google_places" }

type placeEntry struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating"`
	Geometry struct {
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type placesResponse struct {
	Status  string       `json:"status"`
	Results []placeEntry `json:"results"`
}

// Search implements parking.Source.
func (g *GooglePlaces) Search(ctx context.Context, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	if g.apiKey == "" {
		log.Println("google places API key not provided, skipping")

		return nil, nil
	}

	var spots []parking.Spot

	for _, placeType := range placeSearchTypes {
		found, err := g.searchByType(ctx, center, radiusKm, placeType)
		if err != nil {
			return nil, fmt.Errorf("places search for %q: %w", placeType, err)
		}

		spots = append(spots, found...)
	}

	return spots, nil
}

func (g *GooglePlaces) searchByType(ctx context.Context, center spatial.Point, radiusKm float64, placeType string) ([]parking.Spot, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", fmt.Sprintf("%d", int(radiusKm*1000)))
	params.Set("type", placeType)
	params.Set("key", g.apiKey)

	endpoint := g.baseURL + "/nearbysearch/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var spots []parking.Spot

	for _, place := range data.Results {
		spot, ok := parseGooglePlace(place, placeType)
		if !ok {
			continue
		}

		if err := spot.Validate(); err != nil {
			continue
		}

		spots = append(spots, spot)
	}

	return spots, nil
}

func parseGooglePlace(place placeEntry, placeType string) (parking.Spot, bool) {
	location := place.Geometry.Location
	if location == nil {
		return parking.Spot{}, false
	}

	name := place.Name
	if name == "" {
		name = "Unnamed location"
	}

	address := place.Vicinity
	if address == "" {
		address = "Unknown address"
	}

	rating := "N/A"
	if place.Rating != nil {
		rating = fmt.Sprintf("%g", *place.Rating)
	}

	return parking.Spot{
		Name:     name,
		Address:  address,
		Type:     placeSpotType(placeType),
		Position: spatial.Point{Lat: location.Lat, Lng: location.Lng},
		// the nearby search payload carries no vehicle restrictions
		MaxHeight:        nil,
		MaxWeight:        nil,
		HasFacilities:    placeType == "campground" || placeType == "rv_park",
		OvernightAllowed: placeType == "campground" || placeType == "rv_park" || placeType == "rest_area",
		Restrictions:     []string{"Rating: " + rating},
		Source:           placesSourceName,
		Confidence:       placesConfidence,
	}, true
}

func placeSpotType(placeType string) parking.SpotType {
	switch placeType {
	case "campground", "rv_park":
		return parking.TypeCampsite
	case "rest_area":
		return parking.TypeRestArea
	default:
		return parking.TypeParkingLot
	}
}
