// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyOptions struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows past searches, most recent first",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := repo.ListSearches(historyOptions.limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No searches recorded yet.")

			return nil
		}

		a, b, c, d := strings.Repeat("─", 19), strings.Repeat("─", 20), strings.Repeat("─", 10), strings.Repeat("─", 5)
		fmt.Printf("╭─%-19s─┬─%-20s─┬─%-10s─┬─%-5s╮\n", a, b, c, d)
		fmt.Printf("│ %-19s │ %-20s │ %-10s │ %-5s│\n", "When", "Location", "Status", "Spots")
		fmt.Printf("├─%-19s─┼─%-20s─┼─%-10s─┼─%-5s┤\n", a, b, c, d)

		for _, entry := range entries {
			fmt.Printf("│ %-19s │ %-20s │ %-10s │ %5d│\n",
				entry.CreatedAt.Format("2006-01-02 15:04:05"),
				entry.Location,
				entry.Status,
				entry.SpotCount,
			)
		}

		fmt.Printf("╰─%-19s─┴─%-20s─┴─%-10s─┴─%-5s╯\n", a, b, c, d)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(
		&historyOptions.limit,
		"limit",
		20,
		"maximum number of entries to show",
	)
}
