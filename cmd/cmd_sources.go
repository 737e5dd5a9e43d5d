// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarppinen/vanpaikka/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the configured data sources",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b, c := strings.Repeat("─", 2), strings.Repeat("─", 17), strings.Repeat("─", 52)
		fmt.Println("Configured data sources, in merge priority order:")
		fmt.Printf("╭─%2s─┬─%-17s─┬─%-10s─┬─%-52s╮\n", a, b, strings.Repeat("─", 10), c)
		fmt.Printf("│ %2s │ %-17s │ %-10s │ %-52s│\n", "Pr", "Name", "Confidence", "Description")
		fmt.Printf("├─%2s─┼─%-17s─┼─%-10s─┼─%-52s┤\n", a, b, strings.Repeat("─", 10), c)
		err := sources.Each(func(ref sources.Reference) error {
			fmt.Printf("│ %2d │ %-17s │ %9.0f%% │ %-52s│\n", ref.Priority, ref.Name, ref.Confidence*100, ref.Description)

			return nil
		})
		fmt.Printf("╰─%2s─┴─%-17s─┴─%-10s─┴─%-52s╯\n", a, b, strings.Repeat("─", 10), c)

		return err
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
