// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package parking implements the aggregation pipeline: candidate records
// gathered from heterogeneous sources are deduplicated by spatial proximity,
// filtered against vehicle constraints and ranked by source confidence.
package parking

import (
	"errors"
	"fmt"

	"github.com/mkarppinen/vanpaikka/spatial"
)

// SpotType categorizes a parking-capable location.
type SpotType string

const (
	TypeCampsite            SpotType = "campsite"
	TypeRestArea            SpotType = "rest_area"
	TypeParkArea            SpotType = "park_area"
	TypeSurfaceParking      SpotType = "surface_parking"
	TypeParkingGarage       SpotType = "parking_garage"
	TypeParkingLot          SpotType = "parking_lot"
	TypeMunicipalParking    SpotType = "municipal_parking"
	TypeStreetParking       SpotType = "street_parking"
	TypeCommercialParking   SpotType = "commercial_parking"
	TypePublicSquareParking SpotType = "public_square_parking"
)

func (t SpotType) String() string { return string(t) }

// ParseSpotType maps a raw category string to a SpotType. Unknown values
// fall back to TypeParkingLot, the generic category.
func ParseSpotType(s string) SpotType {
	switch SpotType(s) {
	case TypeCampsite, TypeRestArea, TypeParkArea, TypeSurfaceParking,
		TypeParkingGarage, TypeParkingLot, TypeMunicipalParking,
		TypeStreetParking, TypeCommercialParking, TypePublicSquareParking:
		return SpotType(s)
	default:
		return TypeParkingLot
	}
}

// Spot is a single source's claim about a parking-capable location. It is
// created once by a connector and never mutated afterwards. Spots have no
// persistent identity; they are identified only by spatial position.
type Spot struct {
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Type     SpotType      `json:"type"`
	Position spatial.Point `json:"position"`

	// MaxHeight and MaxWeight are nil when the source reports no known
	// restriction. nil is never treated as zero.
	MaxHeight *float64 `json:"max_height,omitempty"` // meters
	MaxWeight *float64 `json:"max_weight,omitempty"` // tons

	HasFacilities    bool `json:"has_facilities"`
	OvernightAllowed bool `json:"overnight_allowed"`

	// Restrictions holds free-text notes in the order the source produced them.
	Restrictions []string `json:"restrictions,omitempty"`

	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"` // [0,1]
}

var (
	errInvalidPosition   = errors.New("spot: invalid position")
	errInvalidConfidence = errors.New("spot: confidence out of [0,1]")
)

// Validate rejects malformed records so they are dropped at construction
// and never reach the deduplication engine.
func (s *Spot) Validate() error {
	if !s.Position.IsValid() {
		return fmt.Errorf("%w: %v", errInvalidPosition, s.Position)
	}

	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: %f", errInvalidConfidence, s.Confidence)
	}

	return nil
}

// Requirements describes the vehicle and stay constraints of a single
// search. Immutable for the duration of the call.
type Requirements struct {
	Height float64 `json:"height"` // meters
	Weight float64 `json:"weight"` // tons
	Length float64 `json:"length"` // meters, informational only

	NeedsFacilities bool `json:"needs_facilities"`
	NeedsOvernight  bool `json:"needs_overnight"`

	RadiusKm float64 `json:"radius_km"`
}

// Validate checks the requirements are usable for a search.
func (r Requirements) Validate() error {
	if r.RadiusKm <= 0 {
		return errors.New("requirements: radius must be positive")
	}

	return nil
}

// DefaultRequirements are used when no previous search parameters exist.
func DefaultRequirements() Requirements {
	return Requirements{
		Height:          3.2,
		Weight:          3.5,
		Length:          7.0,
		NeedsFacilities: false,
		NeedsOvernight:  true,
		RadiusKm:        10.0,
	}
}
