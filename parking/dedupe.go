// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import (
	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/uber/h3-go/v4"
)

// DuplicateThresholdKm is the distance under which two candidates are
// considered the same physical spot.
const DuplicateThresholdKm = 0.1

// The index resolution and disk radius must jointly cover the duplicate
// threshold: a k=2 disk at resolution 9 spans several hundred meters
// everywhere on the globe, well beyond 0.1km.
const (
	dedupeCellResolution = 9
	dedupeDiskRadius     = 2
)

type dedupeEntry struct {
	spot Spot
	cell h3.Cell
}

// Deduper merges candidate records that refer to the same physical spot.
// It is a single-pass, arrival-order dependent engine: each incoming
// candidate is compared against already-accepted spots in increasing
// distance order within the duplicate threshold. The candidate evicts every
// incumbent it beats and is appended at the end; as soon as it meets an
// incumbent with equal or higher confidence it is dropped instead. Either
// way the accepted set never holds two spots within the threshold of each
// other. Ties keep the incumbent.
//
// Accepted spots are indexed by H3 cell so each candidate is compared only
// against spots in the grid disk of its own cell.
type Deduper struct {
	thresholdKm float64
}

// NewDeduper returns a Deduper using the standard duplicate threshold.
func NewDeduper() *Deduper {
	return &Deduper{thresholdKm: DuplicateThresholdKm}
}

// Merge collapses the arrival-ordered candidates into a set of spots where
// no two results are within the duplicate threshold of each other. The
// operation is idempotent: merging its own output returns the same set.
func (d *Deduper) Merge(candidates []Spot) []Spot {
	accepted := make([]*dedupeEntry, 0, len(candidates))
	buckets := make(map[h3.Cell][]*dedupeEntry)

	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			// malformed records are dropped before they can merge
			continue
		}

		cell, neighbors, err := d.neighborsOf(candidate.Position, buckets)
		if err != nil {
			// Validate already rejected every coordinate H3 cannot
			// convert, so a candidate the index cannot place is dropped
			// rather than accepted unchecked.
			continue
		}

		beaten := false

		for {
			nearest := d.nearest(candidate.Position, neighbors)
			if nearest == nil {
				break
			}

			if candidate.Confidence <= nearest.spot.Confidence {
				beaten = true

				break
			}

			// evict every weaker incumbent within the threshold so the
			// accepted set stays spaced after the candidate lands
			accepted = remove(accepted, nearest)
			buckets[nearest.cell] = remove(buckets[nearest.cell], nearest)
			neighbors = remove(neighbors, nearest)
		}

		if beaten {
			continue
		}

		entry := &dedupeEntry{spot: candidate, cell: cell}
		accepted = append(accepted, entry)
		buckets[cell] = append(buckets[cell], entry)
	}

	spots := make([]Spot, len(accepted))
	for i, entry := range accepted {
		spots[i] = entry.spot
	}

	return spots
}

// neighborsOf returns the candidate's cell and the accepted entries that
// could possibly lie within the duplicate threshold.
func (d *Deduper) neighborsOf(
	p spatial.Point,
	buckets map[h3.Cell][]*dedupeEntry,
) (h3.Cell, []*dedupeEntry, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), dedupeCellResolution)
	if err != nil {
		return 0, nil, err
	}

	disk, err := h3.GridDisk(cell, dedupeDiskRadius)
	if err != nil {
		return 0, nil, err
	}

	var neighbors []*dedupeEntry
	for _, c := range disk {
		neighbors = append(neighbors, buckets[c]...)
	}

	return cell, neighbors, nil
}

// nearest returns the closest entry within the duplicate threshold, or nil.
func (d *Deduper) nearest(p spatial.Point, entries []*dedupeEntry) *dedupeEntry {
	var best *dedupeEntry

	bestKm := d.thresholdKm

	for _, entry := range entries {
		if km := p.DistanceKm(entry.spot.Position); km < bestKm {
			best = entry
			bestKm = km
		}
	}

	return best
}

func remove(entries []*dedupeEntry, target *dedupeEntry) []*dedupeEntry {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}

	return entries
}
