// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver

	"github.com/mkarppinen/vanpaikka/geocode"
	"github.com/mkarppinen/vanpaikka/history"
	"github.com/mkarppinen/vanpaikka/parking"
	"github.com/mkarppinen/vanpaikka/sources"
)

var rootOptions struct {
	dbPath    string
	trace     bool
	traceBody bool
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.dbPath,
		"db-path",
		"db",
		"base directory for local state",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.trace,
		"trace",
		false,
		"dump HTTP requests and responses to stderr",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.traceBody,
		"trace-body",
		false,
		"include bodies in the HTTP trace",
	)
}

// openHistory opens the local database and its search history repository.
func openHistory() (*sql.DB, history.Repository, error) {
	if err := os.MkdirAll(rootOptions.dbPath, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(rootOptions.dbPath, "vanpaikka.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo, err := history.NewSQLSearchRepository(db)
	if err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("initializing repository: %w", err)
	}

	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

// newFinder wires the full pipeline: geocoder, connectors and cache.
func newFinder(ctx context.Context) *parking.Finder {
	var traceWriter io.Writer
	if rootOptions.trace {
		traceWriter = os.Stderr
	}

	connectors := sources.Default(&sources.Options{
		GoogleAPIKey: sources.ResolveGoogleAPIKey(ctx),
		TraceWriter:  traceWriter,
		TraceBody:    rootOptions.traceBody,
	})

	return parking.NewFinder(geocode.NewNominatim(), connectors, parking.NewCache())
}
