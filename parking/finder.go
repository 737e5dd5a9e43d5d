// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mkarppinen/vanpaikka/spatial"
	"golang.org/x/sync/singleflight"
)

// Geocoder resolves a free-text location to coordinates. A nil point with a
// nil error means the location is unresolvable.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (*spatial.Point, error)
}

// Source is a connector that produces candidate records for a search area.
// Implementations are expected to absorb their own failures where possible;
// the Finder additionally isolates every call so an error degrades to an
// empty contribution.
type Source interface {
	Name() string
	Search(ctx context.Context, center spatial.Point, radiusKm float64) ([]Spot, error)
}

// SearchStatus tags the outcome variant of a search.
type SearchStatus string

const (
	// StatusSuccess means at least one suitable spot was found.
	StatusSuccess SearchStatus = "success"
	// StatusNoResults means the search ran but nothing suitable was found:
	// unresolvable location, no candidates, or everything filtered out.
	StatusNoResults SearchStatus = "no_results"
	// StatusError means the request itself was unusable.
	StatusError SearchStatus = "error"
)

// SearchParams records what was attempted, so a no_results outcome can be
// retried with relaxed constraints.
type SearchParams struct {
	Location     string       `json:"location"`
	Requirements Requirements `json:"requirements"`
}

// SearchResult is the tagged outcome of one search.
type SearchResult struct {
	Status     SearchStatus   `json:"status"`
	Params     SearchParams   `json:"params"`
	Center     *spatial.Point `json:"center,omitempty"` // resolved search center
	Spots      []Spot         `json:"spots,omitempty"`
	Message    string         `json:"message,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// Finder orchestrates a search: geocode, query every configured source,
// deduplicate, cache the pre-filter set, then filter and rank per request.
// Each search is stateless request/response; only the cache carries state
// across searches.
type Finder struct {
	geocoder Geocoder
	sources  []Source
	deduper  *Deduper
	cache    *Cache
	group    singleflight.Group

	// Progress, when set, is invoked as each source finishes. It may be
	// called from multiple goroutines.
	Progress func(source string, found int, err error)
}

// NewFinder assembles a Finder over the given geocoder and sources. The
// source order is the merge priority order: earlier sources win confidence
// ties during deduplication.
func NewFinder(geocoder Geocoder, sources []Source, cache *Cache) *Finder {
	if cache == nil {
		cache = NewCache()
	}

	return &Finder{
		geocoder: geocoder,
		sources:  sources,
		deduper:  NewDeduper(),
		cache:    cache,
	}
}

// Search runs the full pipeline for a free-text location and requirements.
// It never fails hard: the worst outcome is an empty result set.
func (f *Finder) Search(ctx context.Context, location string, reqs Requirements) *SearchResult {
	params := SearchParams{Location: location, Requirements: reqs}

	if err := reqs.Validate(); err != nil {
		return &SearchResult{
			Status:  StatusError,
			Params:  params,
			Message: err.Error(),
		}
	}

	center, err := f.geocoder.Resolve(ctx, location)
	if err != nil {
		log.Printf("geocoding %q: %v", location, err)
	}

	if center == nil {
		return &SearchResult{
			Status:     StatusNoResults,
			Params:     params,
			Message:    fmt.Sprintf("could not resolve location %q", location),
			Suggestion: "check the spelling or use a nearby city name",
		}
	}

	merged := f.mergedSpots(ctx, *center, reqs.RadiusKm)

	suitable := Filter(merged, reqs)
	Rank(suitable)

	if len(suitable) == 0 {
		message := fmt.Sprintf("no suitable parking spots found near %s", location)
		if len(merged) > 0 {
			message = fmt.Sprintf("%d spot(s) found near %s, none matching the requirements", len(merged), location)
		}

		return &SearchResult{
			Status:     StatusNoResults,
			Params:     params,
			Center:     center,
			Message:    message,
			Suggestion: "try expanding the search radius or adjusting the requirements",
		}
	}

	return &SearchResult{
		Status: StatusSuccess,
		Params: params,
		Center: center,
		Spots:  suitable,
	}
}

// mergedSpots returns the deduplicated, pre-filter spot set for the area,
// from cache when fresh. Population is coalesced per key so concurrent
// searches of the same area trigger the source fan-out at most once.
func (f *Finder) mergedSpots(ctx context.Context, center spatial.Point, radiusKm float64) []Spot {
	key := NewCacheKey(center.Lat, center.Lng, radiusKm)

	v, _, _ := f.group.Do(string(key), func() (interface{}, error) {
		if cached, ok := f.cache.Lookup(key); ok {
			return cached, nil
		}

		merged := f.deduper.Merge(f.collect(ctx, center, radiusKm))
		f.cache.Store(key, merged)

		return merged, nil
	})

	spots, _ := v.([]Spot)

	return spots
}

// collect fans out to every source concurrently and reassembles the
// candidates in configured priority order, so merge semantics stay
// deterministic. A failing source contributes zero records.
func (f *Finder) collect(ctx context.Context, center spatial.Point, radiusKm float64) []Spot {
	results := make([][]Spot, len(f.sources))

	var wg sync.WaitGroup

	for i, source := range f.sources {
		wg.Add(1)

		go func(i int, source Source) {
			defer wg.Done()

			spots, err := source.Search(ctx, center, radiusKm)
			if err != nil {
				log.Printf("source %s failed, contributing no records: %v", source.Name(), err)

				spots = nil
			}

			results[i] = spots

			if f.Progress != nil {
				f.Progress(source.Name(), len(spots), err)
			}
		}(i, source)
	}

	wg.Wait()

	var all []Spot
	for _, spots := range results {
		all = append(all, spots...)
	}

	return all
}
