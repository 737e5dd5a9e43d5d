// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogMatchesConnectors(t *testing.T) {
	connectors := Default(nil)

	var names []string

	require.NoError(t, Each(func(ref Reference) error {
		names = append(names, ref.Name)

		return nil
	}))

	require.Len(t, connectors, len(names))

	for i, connector := range connectors {
		assert.Equal(t, names[i], connector.Name())
	}
}

func TestCatalogPriorityOrder(t *testing.T) {
	previous := 0

	require.NoError(t, Each(func(ref Reference) error {
		assert.Greater(t, ref.Priority, previous, ref.Name)
		previous = ref.Priority

		assert.Greater(t, ref.Confidence, 0.0, ref.Name)
		assert.LessOrEqual(t, ref.Confidence, 1.0, ref.Name)

		return nil
	}))
}

func TestFind(t *testing.T) {
	cases := []struct {
		query string
		want  string
		err   bool
	}{
		{"openstreetmap", "openstreetmap", false},
		{"open", "openstreetmap", false},
		{"OPEN", "openstreetmap", false},
		{"google", "google_places", false},
		{"helsinki", "helsinki_official", false},
		{"city", "city_websites", false},
		{"", "", true},
		{"nominatim", "", true},
	}

	for _, c := range cases {
		found, err := Find(c.query)
		if c.err {
			assert.Error(t, err, c.query)

			continue
		}

		require.NoError(t, err, c.query)
		assert.Equal(t, c.want, found.Name, c.query)
	}
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "pysakointi", foldText("PYSÄKÖINTI"))
	assert.Equal(t, "yopyminen kielletty", foldText("Yöpyminen Kielletty"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("Kaupungin PYSAKOINTI-alueet", parkingKeywords...))
	assert.True(t, containsAny("parkkipaikka keskustassa", parkingKeywords...))
	assert.False(t, containsAny("uimahalli ja kirjasto", parkingKeywords...))
}
