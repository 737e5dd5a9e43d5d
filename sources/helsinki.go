// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
	"github.com/mkarppinen/vanpaikka/utils/htmlutils"
	"github.com/mkarppinen/vanpaikka/utils/httputils"
)

const (
	palvelukarttaSearchURL = "https://palvelukartta.hel.fi/api/v1/search/"
	helsinkiParkingPageURL = "https://www.hel.fi/fi/kaupunkiymparisto-ja-liikenne/pysakointi/pysakointipaikat-hinnat-ja-maksutavat"

	palvelukarttaConfidence = 0.95
	helsinkiTableConfidence = 0.85
	helsinkiListConfidence  = 0.80
	helsinkiTextConfidence  = 0.75

	palvelukarttaSourceName = "Helsinki Palvelukartta"
	helsinkiPageSourceName  = "Helsinki Official Website"

	// helsinkiExtentKm bounds how far from the Helsinki center a search may
	// sit and still have the city's sources consulted.
	helsinkiExtentKm = 20.0
)

var helsinkiCenter = spatial.Point{Lat: 60.1699, Lng: 24.9384}

// palvelukarttaTerms are the service search terms queried against the
// Palvelukartta API.
var palvelukarttaTerms = []string{"pysäköinti", "parking", "pysäköintialue", "pysäköintitalo"}

// HelsinkiOfficial aggregates the city of Helsinki's own sources: the
// Palvelukartta service registry API and the hel.fi parking information
// page. It only activates for searches near Helsinki.
type HelsinkiOfficial struct {
	searchURL  string
	pageURL    string
	httpClient *http.Client
}

func NewHelsinkiOfficial(options *Options) *HelsinkiOfficial {
	return &HelsinkiOfficial{
		searchURL:  palvelukarttaSearchURL,
		pageURL:    helsinkiParkingPageURL,
		httpClient: newConnectorClient(options),
	}
}

// NewHelsinkiOfficialWithURLs is used by tests to point at local servers.
func NewHelsinkiOfficialWithURLs(searchURL, pageURL string, client *http.Client) *HelsinkiOfficial {
	if client == nil {
		client = httputils.NewClient(nil)
	}

	return &HelsinkiOfficial{searchURL: searchURL, pageURL: pageURL, httpClient: client}
}

// Name implements parking.Source.
func (h *HelsinkiOfficial) Name() string { return "helsinki_official" }

// Search implements parking.Source. The two underlying sources degrade
// independently: a failure in one is logged and the other still contributes.
func (h *HelsinkiOfficial) Search(ctx context.Context, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	if center.DistanceKm(helsinkiCenter) > radiusKm+helsinkiExtentKm {
		return nil, nil
	}

	var spots []parking.Spot

	registry, err := h.searchPalvelukartta(ctx, center, radiusKm)
	if err != nil {
		log.Printf("palvelukartta search failed: %v", err)
	}

	spots = append(spots, registry...)

	scraped, err := h.scrapeParkingPage(ctx, center)
	if err != nil {
		log.Printf("helsinki parking page scrape failed: %v", err)
	}

	spots = append(spots, scraped...)

	return spots, nil
}

type palvelukarttaUnit struct {
	Name          map[string]string `json:"name"`
	StreetAddress map[string]string `json:"street_address"`
	Description   map[string]string `json:"description"`
	Location      *struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"location"`
}

type palvelukarttaResponse struct {
	Results []palvelukarttaUnit `json:"results"`
}

func (h *HelsinkiOfficial) searchPalvelukartta(ctx context.Context, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	var spots []parking.Spot

	for _, term := range palvelukarttaTerms {
		found, err := h.searchPalvelukarttaTerm(ctx, term, center, radiusKm)
		if err != nil {
			return spots, fmt.Errorf("term %q: %w", term, err)
		}

		spots = append(spots, found...)
	}

	return spots, nil
}

func (h *HelsinkiOfficial) searchPalvelukarttaTerm(ctx context.Context, term string, center spatial.Point, radiusKm float64) ([]parking.Spot, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("page_size", "50")
	params.Set("only", "name,location,street_address,description,www")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data palvelukarttaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var spots []parking.Spot

	for _, unit := range data.Results {
		spot, ok := parsePalvelukarttaUnit(unit, center, radiusKm)
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

func parsePalvelukarttaUnit(unit palvelukarttaUnit, center spatial.Point, radiusKm float64) (parking.Spot, bool) {
	if unit.Location == nil || len(unit.Location.Coordinates) < 2 {
		return parking.Spot{}, false
	}

	// Palvelukartta coordinates come as [lon, lat]
	position := spatial.Point{
		Lat: unit.Location.Coordinates[1],
		Lng: unit.Location.Coordinates[0],
	}

	if center.DistanceKm(position) > radiusKm {
		return parking.Spot{}, false
	}

	name := unit.Name["fi"]
	if name == "" {
		name = "Helsinki Parking Spot"
	}

	address := unit.StreetAddress["fi"]
	if address == "" {
		address = "Unknown address"
	}

	description := foldText(unit.Description["fi"])

	return parking.Spot{
		Name:             name,
		Address:          address,
		Type:             helsinkiSpotType(name),
		Position:         position,
		HasFacilities:    descriptionHasFacilities(description),
		OvernightAllowed: descriptionAllowsOvernight(description),
		Restrictions:     descriptionRestrictions(description),
		Source:           palvelukarttaSourceName,
		Confidence:       palvelukarttaConfidence,
	}, true
}

func helsinkiSpotType(name string) parking.SpotType {
	folded := foldText(name)

	switch {
	case strings.Contains(folded, "talo") || strings.Contains(folded, "garage"):
		return parking.TypeParkingGarage
	case strings.Contains(folded, "katu") || strings.Contains(folded, "tie") || strings.Contains(folded, "street"):
		return parking.TypeStreetParking
	case strings.Contains(folded, "keskus") || strings.Contains(folded, "center"):
		return parking.TypeCommercialParking
	case strings.Contains(folded, "tori") || strings.Contains(folded, "square"):
		return parking.TypePublicSquareParking
	default:
		return parking.TypeMunicipalParking
	}
}

// descriptionAllowsOvernight reads an already folded description. Unknown
// descriptions default to allowed.
func descriptionAllowsOvernight(description string) bool {
	if containsAny(description, "yöpyminen kielletty", "ei yöpymistä", "no overnight") {
		return false
	}

	return true
}

func descriptionHasFacilities(description string) bool {
	return containsAny(description, "wc", "käymälä", "toilet", "vesi", "water", "suihku", "shower")
}

func descriptionRestrictions(description string) []string {
	var restrictions []string

	switch {
	case containsAny(description, "maksuton", "ilmainen"):
		restrictions = append(restrictions, "Free parking")
	case containsAny(description, "maksullinen", "maksu"):
		restrictions = append(restrictions, "Paid parking")
	}

	if containsAny(description, "aikarajoitus", "time limit") {
		restrictions = append(restrictions, "Time restrictions apply")
	}

	if containsAny(description, "lupa", "permit") {
		restrictions = append(restrictions, "Permit may be required")
	}

	return restrictions
}

func (h *HelsinkiOfficial) scrapeParkingPage(ctx context.Context, center spatial.Point) ([]parking.Spot, error) {
	doc, err := fetchPage(ctx, h.httpClient, h.pageURL)
	if err != nil {
		return nil, err
	}

	var spots []parking.Spot

	spots = append(spots, parseHelsinkiTables(doc, center)...)
	spots = append(spots, parseHelsinkiLists(doc, center)...)
	spots = append(spots, extractAreasFromText(htmlutils.Text(doc), center)...)

	return spots, nil
}

// parseHelsinkiTables extracts parking areas from pricing tables. Table rows
// carry no coordinates, so positions are synthesized on a small grid around
// the search center.
func parseHelsinkiTables(doc *html.Node, center spatial.Point) []parking.Spot {
	var spots []parking.Spot

	for _, table := range htmlutils.FindAll(doc, htmlutils.ByTag("table")) {
		if !containsAny(htmlutils.Text(table), "pysäköinti", "parking", "maksut", "hinnat") {
			continue
		}

		rows := htmlutils.TableRows(table)
		if len(rows) < 2 {
			continue
		}

		for i, row := range rows[1:] {
			if len(row) < 2 {
				continue
			}

			name := row[0]
			pricing := row[1]

			if name == "" || !containsAny(name, "pysäköinti", "parking", "alue") {
				continue
			}

			rowNumber := i + 1

			var restrictions []string
			if pricing != "" {
				restrictions = append(restrictions, "Pricing: "+pricing)
			}

			spots = append(spots, parking.Spot{
				Name:    name,
				Address: "Helsinki",
				Type:    parking.TypeMunicipalParking,
				Position: spatial.Point{
					Lat: center.Lat + float64(rowNumber%10)*0.005 - 0.025,
					Lng: center.Lng + float64(rowNumber/10)*0.005 - 0.015,
				},
				OvernightAllowed: !containsAny(pricing, "short", "lyhyt"),
				Restrictions:     restrictions,
				Source:           helsinkiPageSourceName,
				Confidence:       helsinkiTableConfidence,
			})
		}
	}

	return spots
}

func parseHelsinkiLists(doc *html.Node, center spatial.Point) []parking.Spot {
	var spots []parking.Spot

	for _, list := range htmlutils.FindAll(doc, htmlutils.ByTag("ul", "ol")) {
		if !containsAny(htmlutils.Text(list), "pysäköinti", "parking") {
			continue
		}

		for i, item := range htmlutils.FindAll(list, htmlutils.ByTag("li")) {
			text := htmlutils.Text(item)
			if text == "" || !containsAny(text, "pysäköinti", "parking", "alue") {
				continue
			}

			spots = append(spots, parking.Spot{
				Name:    text,
				Address: "Helsinki",
				Type:    parking.TypeStreetParking,
				Position: spatial.Point{
					Lat: center.Lat + float64(i%8)*0.008 - 0.032,
					Lng: center.Lng + float64(i/8)*0.008 - 0.024,
				},
				OvernightAllowed: true,
				Restrictions:     []string{"Check local signage"},
				Source:           helsinkiPageSourceName,
				Confidence:       helsinkiListConfidence,
			})
		}
	}

	return spots
}

// areaPatterns match named parking areas mentioned in prose, like
// "Kampin pysäköintialue" or "Kauppatori pysäköinti".
var areaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([A-ZÅÄÖ][a-zåäö]+(?:(?:in|n)?\s+(?:alue|pysäköintialue|parking)))`),
	regexp.MustCompile(`(?i)((?:Katu|tie|kuja|tori|puisto)\s*\d*\s*pysäköinti)`),
	regexp.MustCompile(`(?i)([A-ZÅÄÖ][a-zåäö]+(?:tori|katu|tie)\s*pysäköinti)`),
}

const maxTextExtractedSpots = 20

func extractAreasFromText(text string, center spatial.Point) []parking.Spot {
	seen := make(map[string]bool)

	var names []string

	for _, pattern := range areaPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(match[1])
			if len(name) <= 5 || seen[name] {
				continue
			}

			seen[name] = true
			names = append(names, name)
		}
	}

	var spots []parking.Spot

	for i, name := range names {
		if len(spots) >= maxTextExtractedSpots {
			break
		}

		spots = append(spots, parking.Spot{
			Name:    name,
			Address: "Helsinki",
			Type:    parking.TypeStreetParking,
			Position: spatial.Point{
				Lat: center.Lat + float64(i%12)*0.006 - 0.036,
				Lng: center.Lng + float64(i/12)*0.006 - 0.018,
			},
			OvernightAllowed: true,
			Restrictions:     []string{"Check local regulations"},
			Source:           helsinkiPageSourceName,
			Confidence:       helsinkiTextConfidence,
		})
	}

	return spots
}
