// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/mkarppinen/vanpaikka/utils/httputils"
)

const (
	overpassURL   = "https://overpass-api.de/api/interpreter"
	osmConfidence = 0.8
	osmSourceName = "OpenStreetMap"
)

// Overpass queries OpenStreetMap through the Overpass API for parking
// amenities, campsites, rest areas and parks around the search center.
type Overpass struct {
	baseURL    string
	httpClient *http.Client
}

// NewOverpass creates the connector with the shared HTTP defaults.
func NewOverpass(options *Options) *Overpass {
	return &Overpass{
		baseURL:    overpassURL,
		httpClient: newConnectorClient(options),
	}
}

// NewOverpassWithURL is used by tests to point at a local server.
func NewOverpassWithURL(baseURL string, client *http.Client) *Overpass {
	if client == nil {
		client = httputils.NewClient(nil)
	}

	return &Overpass{baseURL: baseURL, httpClient: client}
}

// Name implements parking.Source.
func (o *Overpass) Name() string { return "openstreetmap" }

type overpassElement struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// Search implements parking.Source.
func (o *Overpass) Search(ctx context.Context, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	query := overpassQuery(center, radiusKm)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building overpass request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}

	var spots []parking.Spot

	for _, element := range data.Elements {
		spot, ok := parseOSMElement(element)
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

// overpassQuery builds the Overpass QL query covering the parking feature
// types the pipeline aggregates.
func overpassQuery(center spatial.Point, radiusKm float64) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", int(radiusKm*1000), center.Lat, center.Lng)

	return fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="parking"]%[1]s;
  way["amenity"="parking"]%[1]s;
  node["tourism"="camp_site"]%[1]s;
  node["highway"="rest_area"]%[1]s;
  node["leisure"="park"]%[1]s;
);
out center meta;`, around)
}

func parseOSMElement(element overpassElement) (parking.Spot, bool) {
	var position spatial.Point

	switch {
	case element.Lat != nil && element.Lon != nil:
		position = spatial.Point{Lat: *element.Lat, Lng: *element.Lon}
	case element.Center != nil:
		position = spatial.Point{Lat: element.Center.Lat, Lng: element.Center.Lon}
	default:
		// ways without a computed center carry no usable coordinates
		return parking.Spot{}, false
	}

	tags := element.Tags

	name := tags["name"]
	if name == "" {
		name = fmt.Sprintf("Parking near %.4f, %.4f", position.Lat, position.Lng)
	}

	address := tags["addr:street"]
	if address == "" {
		address = "Unknown address"
	}

	return parking.Spot{
		Name:             name,
		Address:          address,
		Type:             osmSpotType(tags),
		Position:         position,
		MaxHeight:        parseLimit(firstTag(tags, "maxheight", "height")),
		MaxWeight:        parseWeightLimit(tags["maxweight"]),
		HasFacilities:    osmHasFacilities(tags),
		OvernightAllowed: osmOvernightAllowed(tags),
		Restrictions:     osmRestrictions(tags),
		Source:           osmSourceName,
		Confidence:       osmConfidence,
	}, true
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := tags[key]; v != "" {
			return v
		}
	}

	return ""
}

func osmSpotType(tags map[string]string) parking.SpotType {
	switch {
	case tags["tourism"] == "camp_site":
		return parking.TypeCampsite
	case tags["highway"] == "rest_area":
		return parking.TypeRestArea
	case tags["leisure"] == "park":
		return parking.TypeParkArea
	case tags["parking"] == "surface":
		return parking.TypeSurfaceParking
	case tags["parking"] == "multi-storey":
		return parking.TypeParkingGarage
	default:
		return parking.TypeParkingLot
	}
}

var limitRegex = regexp.MustCompile(`(\d+\.?\d*)`)

// parseLimit extracts the numeric value from a tag like "3.5 m".
func parseLimit(s string) *float64 {
	match := limitRegex.FindString(s)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}

	return &value
}

// parseWeightLimit extracts a weight limit in tons, converting from kg when
// the tag says so.
func parseWeightLimit(s string) *float64 {
	value := parseLimit(s)
	if value == nil {
		return nil
	}

	if strings.Contains(strings.ToLower(s), "kg") {
		tons := *value / 1000

		return &tons
	}

	return value
}

var facilityIndicators = []string{
	"toilets", "drinking_water", "shower", "waste_disposal",
	"electricity", "water_point",
}

func osmHasFacilities(tags map[string]string) bool {
	for _, indicator := range facilityIndicators {
		if tags[indicator] == "yes" {
			return true
		}
	}

	return false
}

func osmOvernightAllowed(tags map[string]string) bool {
	if tags["camping"] == "no" {
		return false
	}

	if strings.Contains(strings.ToLower(tags["note"]), "no overnight") {
		return false
	}

	// campsites and rest areas explicitly welcome overnight stays;
	// everything else defaults to allowed unless forbidden above
	return true
}

func osmRestrictions(tags map[string]string) []string {
	var restrictions []string

	if tags["access"] == "private" {
		restrictions = append(restrictions, "Private access only")
	}

	if tags["fee"] == "yes" {
		restrictions = append(restrictions, "Paid parking")
	}

	if limit, ok := tags["time_limit"]; ok {
		restrictions = append(restrictions, "Time limit: "+limit)
	}

	if hours := tags["opening_hours"]; hours != "" {
		restrictions = append(restrictions, "Hours: "+hours)
	}

	return restrictions
}

// newConnectorClient builds the HTTP client every connector shares the
// defaults of.
func newConnectorClient(options *Options) *http.Client {
	if options == nil {
		options = &Options{}
	}

	return httputils.NewClient(&httputils.ClientOptions{
		TraceWriter: options.TraceWriter,
		TraceBody:   options.TraceBody,
	})
}
