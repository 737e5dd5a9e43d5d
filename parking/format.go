// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import "fmt"

// FormattedSpot is the read-only presentation view of a spot: human-readable
// limits, confidence as a percentage string.
type FormattedSpot struct {
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Coordinates      []float64 `json:"coordinates"` // [lat, lng]
	Type             SpotType  `json:"type"`
	OvernightAllowed bool      `json:"overnight_allowed"`
	Facilities       bool      `json:"facilities"`
	MaxHeight        string    `json:"max_height"`
	MaxWeight        string    `json:"max_weight"`
	Restrictions     []string  `json:"restrictions"`
	Source           string    `json:"source"`
	Confidence       string    `json:"confidence"`
}

// FormatSpot renders a spot for presentation. Absent limits render as
// "Unknown", never as zero.
func FormatSpot(s Spot) FormattedSpot {
	maxHeight := "Unknown"
	if s.MaxHeight != nil {
		maxHeight = fmt.Sprintf("%gm", *s.MaxHeight)
	}

	maxWeight := "Unknown"
	if s.MaxWeight != nil {
		maxWeight = fmt.Sprintf("%gt", *s.MaxWeight)
	}

	return FormattedSpot{
		Name:             s.Name,
		Address:          s.Address,
		Coordinates:      []float64{s.Position.Lat, s.Position.Lng},
		Type:             s.Type,
		OvernightAllowed: s.OvernightAllowed,
		Facilities:       s.HasFacilities,
		MaxHeight:        maxHeight,
		MaxWeight:        maxWeight,
		Restrictions:     s.Restrictions,
		Source:           s.Source,
		Confidence:       fmt.Sprintf("%.1f%%", s.Confidence*100),
	}
}
