// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/mkarppinen/vanpaikka/utils/httputils"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// Nominatim geocodes through the OpenStreetMap Nominatim service, biased to
// Finland like the rest of the pipeline.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatim creates a geocoder with the shared HTTP client defaults.
func NewNominatim() *Nominatim {
	return &Nominatim{
		baseURL:    nominatimURL,
		httpClient: httputils.NewClient(nil),
	}
}

// NewNominatimWithURL is used by tests to point at a local server.
func NewNominatimWithURL(baseURL string, client *http.Client) *Nominatim {
	if client == nil {
		client = httputils.NewClient(nil)
	}

	return &Nominatim{baseURL: baseURL, httpClient: client}
}

type nominatimEntry struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks the location up, returning nil when nothing matches.
func (n *Nominatim) Resolve(ctx context.Context, location string) (*spatial.Point, error) {
	params := url.Values{}
	params.Set("q", location+", Finland")
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var entries []nominatimEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(entries[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", entries[0].Lat, err)
	}

	lng, err := strconv.ParseFloat(entries[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", entries[0].Lon, err)
	}

	point := spatial.Point{Lat: lat, Lng: lng}
	if !point.IsValid() {
		return nil, fmt.Errorf("nominatim returned out-of-range coordinates: %v", point)
	}

	return &point, nil
}
