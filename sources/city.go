// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/net/html"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/mkarppinen/vanpaikka/utils/htmlutils"
	"github.com/mkarppinen/vanpaikka/utils/httputils"
)

const (
	cityConfidence = 0.70

	// maxSpotsPerCity caps how many records one municipal page contributes.
	maxSpotsPerCity = 10

	// cityExtentKm bounds how far from a city center a search may sit and
	// still have that city's page scraped.
	cityExtentKm = 15.0
)

// cityTarget is one municipal parking page together with the city center
// used to decide whether a search falls inside its coverage.
type cityTarget struct {
	name   string
	url    string
	center spatial.Point
}

var cityTargets = []cityTarget{
	{
		name:   "Tampere",
		url:    "https://www.tampere.fi/en/traffic-and-parking/parking",
		center: spatial.Point{Lat: 61.4978, Lng: 23.7610},
	},
	{
		name:   "Turku",
		url:    "https://www.turku.fi/en/living-turku/traffic-and-parking",
		center: spatial.Point{Lat: 60.4518, Lng: 22.2666},
	},
	{
		name:   "Oulu",
		url:    "https://www.ouka.fi/oulu/english/parking",
		center: spatial.Point{Lat: 65.0121, Lng: 25.4651},
	},
}

// CityWebsites scrapes the parking information pages of Finnish cities other
// than Helsinki. Only cities whose center falls within reach of the search
// are consulted.
type CityWebsites struct {
	targets    []cityTarget
	httpClient *http.Client
}

func NewCityWebsites(options *Options) *CityWebsites {
	return &CityWebsites{
		targets:    cityTargets,
		httpClient: newConnectorClient(options),
	}
}

// newCityWebsitesWithTargets is used by tests to point at local servers.
func newCityWebsitesWithTargets(targets []cityTarget, client *http.Client) *CityWebsites {
	if client == nil {
		client = httputils.NewClient(nil)
	}

	return &CityWebsites{targets: targets, httpClient: client}
}

// Name implements parking.Source.
func (c *CityWebsites) Name() string { return "city_websites" }

// Search implements parking.Source. A failing city page is logged and the
// remaining cities still contribute.
func (c *CityWebsites) Search(ctx context.Context, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	var spots []parking.Spot

	for _, target := range c.targets {
		if center.DistanceKm(target.center) > radiusKm+cityExtentKm {
			continue
		}

		found, err := c.scrapeCity(ctx, target, center)
		if err != nil {
			log.Printf("%s parking page scrape failed: %v", target.name, err)

			continue
		}

		spots = append(spots, found...)
	}

	return spots, nil
}

func (c *CityWebsites) scrapeCity(ctx context.Context, target cityTarget, center spatial.Point) ([]parking.Spot, error) {
	doc, err := fetchPage(ctx, c.httpClient, target.url)
	if err != nil {
		return nil, err
	}

	return parseCityPage(target, doc, center), nil
}

// parseCityPage turns parking-related text fragments of a municipal page
// into records. The pages expose no coordinates, so positions are
// synthesized on a small grid around the search center.
func parseCityPage(target cityTarget, doc *html.Node, center spatial.Point) []parking.Spot {
	fragments := htmlutils.FindAll(doc, htmlutils.ByTag("p", "li", "td", "h2", "h3"))

	seen := make(map[string]bool)

	var spots []parking.Spot

	for _, fragment := range fragments {
		if len(spots) >= maxSpotsPerCity {
			break
		}

		text := htmlutils.Text(fragment)
		if len(text) <= 10 || len(text) >= 200 {
			continue
		}

		if !containsAny(text, parkingKeywords...) || seen[text] {
			continue
		}

		seen[text] = true

		info := text
		if runes := []rune(info); len(runes) > 100 {
			info = string(runes[:100]) + "..."
		}

		i := len(spots)

		spots = append(spots, parking.Spot{
			Name:    fmt.Sprintf("%s Parking Area %d", target.name, i+1),
			Address: target.name + " center",
			Type:    parking.TypeMunicipalParking,
			Position: spatial.Point{
				Lat: center.Lat + float64(i%6)*0.01 - 0.025,
				Lng: center.Lng + float64(i/6)*0.01 - 0.02,
			},
			OvernightAllowed: descriptionAllowsOvernight(foldText(text)),
			Restrictions:     []string{"Info: " + info},
			Source:           target.name + " Official Website",
			Confidence:       cityConfidence,
		})
	}

	return spots
}
