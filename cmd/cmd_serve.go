// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/mkarppinen/vanpaikka/web"
)

var serveOptions struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the search API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := openHistory()
		if err != nil {
			log.Printf("search history unavailable: %v", err)

			repo = nil
		} else {
			defer db.Close()
		}

		finder := newFinder(cmd.Context())

		log.Printf("vanpaikka %s listening on %s", Version, serveOptions.addr)

		return web.NewServer(finder, repo, serveOptions.addr).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&serveOptions.addr,
		"http",
		":8080",
		"listen address",
	)
}
