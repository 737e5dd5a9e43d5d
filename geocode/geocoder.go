// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text locations to coordinates.
package geocode

import (
	"context"

	"github.com/mkarppinen/vanpaikka/spatial"
)

// Geocoder resolves a free-text location to coordinates. A nil point with a
// nil error signals an unresolvable location, which is not a failure.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (*spatial.Point, error)
}
