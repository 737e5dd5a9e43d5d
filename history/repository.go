// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package history persists past searches so later invocations can reuse
// their parameters.
package history

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/spatial"
)

// Entry is one recorded search.
type Entry struct {
	ID           int
	Location     string
	Center       *spatial.Point // nil when the location never resolved
	Requirements parking.Requirements
	Status       string
	SpotCount    int
	CreatedAt    time.Time
}

// Repository defines the interface for search history operations.
type Repository interface {
	// CreateSchema creates the database schema.
	CreateSchema() error
	// SaveSearch appends one search to the history.
	SaveSearch(entry *Entry) error
	// LastSearch returns the most recent entry, or nil when the history is
	// empty.
	LastSearch() (*Entry, error)
	// ListSearches returns up to limit entries, most recent first.
	ListSearches(limit int) ([]*Entry, error)
}

type sqlSearchRepository struct {
	db *sql.DB
}

func NewSQLSearchRepository(db *sql.DB) (Repository, error) {
	// DuckDB needs to load the spatial extension
	_, err := db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return nil, err
	}

	return &sqlSearchRepository{db: db}, nil
}

func (r *sqlSearchRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS searches_seq START 1;

		CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY DEFAULT nextval('searches_seq'),
			location VARCHAR NOT NULL,
			center POINT_2D,
			height DOUBLE NOT NULL,
			weight DOUBLE NOT NULL,
			length DOUBLE NOT NULL,
			needs_facilities BOOLEAN NOT NULL,
			needs_overnight BOOLEAN NOT NULL,
			radius_km DOUBLE NOT NULL,
			status VARCHAR NOT NULL,
			spot_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlSearchRepository) SaveSearch(entry *Entry) error {
	if entry.Location == "" {
		return errors.New("location can't be empty")
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var lng, lat any
	if entry.Center != nil {
		lng, lat = entry.Center.Lng, entry.Center.Lat
	}

	return r.db.QueryRow(`
		INSERT INTO searches(
			location,
			center,
			height,
			weight,
			length,
			needs_facilities,
			needs_overnight,
			radius_km,
			status,
			spot_count,
			created_at
		) VALUES (?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		entry.Location,
		lng,
		lat,
		entry.Requirements.Height,
		entry.Requirements.Weight,
		entry.Requirements.Length,
		entry.Requirements.NeedsFacilities,
		entry.Requirements.NeedsOvernight,
		entry.Requirements.RadiusKm,
		entry.Status,
		entry.SpotCount,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

const selectSearches = `
	SELECT id,
	       location,
	       ST_AsText(center),
	       height,
	       weight,
	       length,
	       needs_facilities,
	       needs_overnight,
	       radius_km,
	       status,
	       spot_count,
	       created_at
	FROM searches
	ORDER BY created_at DESC, id DESC
`

func (r *sqlSearchRepository) LastSearch() (*Entry, error) {
	entries, err := r.ListSearches(1)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, nil
	}

	return entries[0], nil
}

func (r *sqlSearchRepository) ListSearches(limit int) ([]*Entry, error) {
	rows, err := r.db.Query(selectSearches+" LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry

	for rows.Next() {
		entry, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanSearch(rows *sql.Rows) (*Entry, error) {
	var (
		entry  Entry
		center sql.NullString
	)

	if err := rows.Scan(
		&entry.ID,
		&entry.Location,
		&center,
		&entry.Requirements.Height,
		&entry.Requirements.Weight,
		&entry.Requirements.Length,
		&entry.Requirements.NeedsFacilities,
		&entry.Requirements.NeedsOvernight,
		&entry.Requirements.RadiusKm,
		&entry.Status,
		&entry.SpotCount,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}

	if center.Valid {
		var point spatial.Point
		if err := point.Scan(center.String); err != nil {
			return nil, err
		}

		entry.Center = &point
	}

	return &entry, nil
}
