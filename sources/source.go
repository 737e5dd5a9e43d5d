// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package sources implements the connectors that gather parking spot
// candidates from the individual data providers. Every connector satisfies
// the same contract: given a search center and radius it returns candidate
// records, and internal failures degrade to an empty result rather than
// propagating past the connector boundary.
package sources

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mkarppinen/vanpaikka/parking"
)

var (
	errMultipleMatches = errors.New("multiple matches")
	errSourceNotFound  = errors.New("source not found")
)

// Reference describes a configured source connector.
type Reference struct {
	Name        string  // short name used on the CLI and in logs
	Priority    int     // merge priority, lower queries earlier
	Confidence  float64 // base confidence assigned to this source's records
	Description string
	Homepage    string
}

// All configured sources, in merge priority order: generic open geodata
// first, commercial API second, scraped official/municipal sources last.
var catalog = []Reference{
	{
		Name:        "openstreetmap",
		Priority:    1,
		Confidence:  osmConfidence,
		Description: "OpenStreetMap via the Overpass API",
		Homepage:    "https://overpass-api.de",
	},
	{
		Name:        "google_places",
		Priority:    2,
		Confidence:  placesConfidence,
		Description: "Google Places nearby search (requires API key)",
		Homepage:    "https://maps.googleapis.com",
	},
	{
		Name:        "helsinki_official",
		Priority:    3,
		Confidence:  palvelukarttaConfidence,
		Description: "Helsinki Palvelukartta API and official parking pages",
		Homepage:    "https://palvelukartta.hel.fi",
	},
	{
		Name:        "city_websites",
		Priority:    4,
		Confidence:  cityConfidence,
		Description: "Municipal parking pages (Tampere, Turku, Oulu)",
		Homepage:    "",
	},
}

// Each invokes the callback for every configured source in priority order.
func Each(callback func(Reference) error) error {
	for i := range catalog {
		if err := callback(catalog[i]); err != nil {
			return err
		}
	}

	return nil
}

// Find locates a source by case-insensitive name prefix.
func Find(q string) (*Reference, error) {
	if q == "" {
		return nil, errors.New("empty search query")
	}

	var found *Reference

	for i := range catalog {
		ref := &catalog[i]
		if len(ref.Name) >= len(q) && strings.EqualFold(ref.Name[:len(q)], q) {
			if found == nil {
				refCopy := *ref
				found = &refCopy
			} else {
				return nil, fmt.Errorf("%w for %q: %q, %q", errMultipleMatches, q, found.Name, ref.Name)
			}
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %q", errSourceNotFound, q)
	}

	return found, nil
}

// Options configures connector construction.
type Options struct {
	// GoogleAPIKey enables the Google Places connector. When empty the
	// connector stays configured but contributes no records.
	GoogleAPIKey string

	// TraceWriter enables HTTP tracing on every connector when non-nil.
	TraceWriter io.Writer

	// TraceBody includes HTTP bodies in the trace.
	TraceBody bool
}

// Default assembles the connector set in merge priority order.
func Default(options *Options) []parking.Source {
	if options == nil {
		options = &Options{}
	}

	return []parking.Source{
		NewOverpass(options),
		NewGooglePlaces(options.GoogleAPIKey, options),
		NewHelsinkiOfficial(options),
		NewCityWebsites(options),
	}
}
