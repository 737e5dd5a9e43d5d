// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the search pipeline over HTTP.
package web

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkarppinen/vanpaikka/history"
	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/sources"
)

// Server serves the search API. The history repository is optional; when
// nil, searches are not recorded.
type Server struct {
	finder   *parking.Finder
	searches history.Repository
	addr     string
}

func NewServer(finder *parking.Finder, searches history.Repository, addr string) *Server {
	return &Server{
		finder:   finder,
		searches: searches,
		addr:     addr,
	}
}

func (s *Server) Run() error {
	return s.router().Run(s.addr)
}

func (s *Server) router() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/sources", s.handleSources)
	r.GET("/api/search", s.handleSearch)

	return r
}

type sourceView struct {
	Name        string  `json:"name"`
	Priority    int     `json:"priority"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	Homepage    string  `json:"homepage,omitempty"`
}

func (s *Server) handleSources(c *gin.Context) {
	var views []sourceView

	_ = sources.Each(func(ref sources.Reference) error {
		views = append(views, sourceView{
			Name:        ref.Name,
			Priority:    ref.Priority,
			Confidence:  ref.Confidence,
			Description: ref.Description,
			Homepage:    ref.Homepage,
		})

		return nil
	})

	c.JSON(http.StatusOK, gin.H{"sources": views})
}

type searchResponse struct {
	Status     parking.SearchStatus    `json:"status"`
	Location   string                  `json:"location"`
	Center     []float64               `json:"center,omitempty"` // [lat, lng]
	Spots      []parking.FormattedSpot `json:"spots,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Suggestion string                  `json:"suggestion,omitempty"`
}

func (s *Server) handleSearch(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: location"})

		return
	}

	reqs, err := requirementsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	result := s.finder.Search(c.Request.Context(), location, reqs)

	s.record(location, result)

	if result.Status == parking.StatusError {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Message})

		return
	}

	response := searchResponse{
		Status:     result.Status,
		Location:   location,
		Message:    result.Message,
		Suggestion: result.Suggestion,
	}

	if result.Center != nil {
		response.Center = []float64{result.Center.Lat, result.Center.Lng}
	}

	for _, spot := range result.Spots {
		response.Spots = append(response.Spots, parking.FormatSpot(spot))
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) record(location string, result *parking.SearchResult) {
	if s.searches == nil {
		return
	}

	err := s.searches.SaveSearch(&history.Entry{
		Location:     location,
		Center:       result.Center,
		Requirements: result.Params.Requirements,
		Status:       string(result.Status),
		SpotCount:    len(result.Spots),
	})
	if err != nil {
		log.Printf("recording search for %q: %v", location, err)
	}
}

// requirementsFromQuery reads the vehicle profile from the query string,
// falling back to the defaults for omitted parameters.
func requirementsFromQuery(c *gin.Context) (parking.Requirements, error) {
	reqs := parking.DefaultRequirements()

	var err error

	if reqs.Height, err = floatParam(c, "height", reqs.Height); err != nil {
		return reqs, err
	}

	if reqs.Weight, err = floatParam(c, "weight", reqs.Weight); err != nil {
		return reqs, err
	}

	if reqs.Length, err = floatParam(c, "length", reqs.Length); err != nil {
		return reqs, err
	}

	if reqs.RadiusKm, err = floatParam(c, "radius", reqs.RadiusKm); err != nil {
		return reqs, err
	}

	if reqs.NeedsFacilities, err = boolParam(c, "facilities", reqs.NeedsFacilities); err != nil {
		return reqs, err
	}

	if reqs.NeedsOvernight, err = boolParam(c, "overnight", reqs.NeedsOvernight); err != nil {
		return reqs, err
	}

	return reqs, nil
}

func floatParam(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}

	return value, nil
}

func boolParam(c *gin.Context, name string, fallback bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &paramError{name: name, value: raw}
	}

	return value, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + e.name
}
