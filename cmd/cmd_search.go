// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mkarppinen/vanpaikka/history"
	"github.com/mkarppinen/vanpaikka/parking"
)

var searchOptions struct {
	height     float64
	weight     float64
	length     float64
	radius     float64
	facilities bool
	overnight  bool
	fresh      bool
}

var searchCmd = &cobra.Command{
	Use:   "search <location>",
	Short: "Searches suitable camper parking spots near a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := args[0]

		db, repo, err := openHistory()
		if err != nil {
			// history is a convenience, a search must still work without it
			log.Printf("search history unavailable: %v", err)

			repo = nil
		} else {
			defer db.Close()
		}

		reqs := searchRequirements(cmd, repo)

		finder := newFinder(cmd.Context())
		finder.Progress = searchProgress()

		result := finder.Search(cmd.Context(), location, reqs)

		if repo != nil {
			err := repo.SaveSearch(&history.Entry{
				Location:     location,
				Center:       result.Center,
				Requirements: reqs,
				Status:       string(result.Status),
				SpotCount:    len(result.Spots),
			})
			if err != nil {
				log.Printf("recording search: %v", err)
			}
		}

		return printResult(result)
	},
}

// searchRequirements assembles the vehicle profile for this run: built-in
// defaults, then the previous search's profile unless --fresh, then explicit
// flags.
func searchRequirements(cmd *cobra.Command, repo history.Repository) parking.Requirements {
	reqs := parking.DefaultRequirements()

	if !searchOptions.fresh && repo != nil {
		previous, err := repo.LastSearch()
		if err != nil {
			log.Printf("loading previous search: %v", err)
		} else if previous != nil {
			reqs = previous.Requirements
		}
	}

	flags := cmd.Flags()

	if flags.Changed("height") {
		reqs.Height = searchOptions.height
	}

	if flags.Changed("weight") {
		reqs.Weight = searchOptions.weight
	}

	if flags.Changed("length") {
		reqs.Length = searchOptions.length
	}

	if flags.Changed("radius") {
		reqs.RadiusKm = searchOptions.radius
	}

	if flags.Changed("facilities") {
		reqs.NeedsFacilities = searchOptions.facilities
	}

	if flags.Changed("overnight") {
		reqs.NeedsOvernight = searchOptions.overnight
	}

	return reqs
}

// searchProgress reports per-source completion on a progress bar when
// stderr is a terminal.
func searchProgress() func(source string, found int, err error) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Querying sources"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	return func(source string, found int, err error) {
		_ = bar.Add(1)
	}
}

func printResult(result *parking.SearchResult) error {
	switch result.Status {
	case parking.StatusSuccess:
		fmt.Printf("Found %d suitable spot(s) near %s:\n", len(result.Spots), result.Params.Location)

		for i, spot := range result.Spots {
			printSpot(i+1, parking.FormatSpot(spot))
		}

		return nil
	case parking.StatusNoResults:
		fmt.Println(result.Message)

		if result.Suggestion != "" {
			fmt.Printf("Suggestion: %s\n", result.Suggestion)
		}

		return nil
	default:
		return fmt.Errorf("invalid search: %s", result.Message)
	}
}

func printSpot(n int, spot parking.FormattedSpot) {
	fmt.Printf("\n%3d. %s (%s)\n", n, spot.Name, spot.Type)
	fmt.Printf("     Address:      %s\n", spot.Address)
	fmt.Printf("     Coordinates:  %.4f, %.4f\n", spot.Coordinates[0], spot.Coordinates[1])
	fmt.Printf("     Max height:   %s   Max weight: %s\n", spot.MaxHeight, spot.MaxWeight)
	fmt.Printf("     Overnight:    %s   Facilities: %s\n", yesNo(spot.OvernightAllowed), yesNo(spot.Facilities))

	if len(spot.Restrictions) > 0 {
		fmt.Printf("     Restrictions: %s\n", strings.Join(spot.Restrictions, "; "))
	}

	fmt.Printf("     Source:       %s (%s confidence)\n", spot.Source, spot.Confidence)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64Var(
		&searchOptions.height,
		"height",
		parking.DefaultRequirements().Height,
		"vehicle height in meters",
	)
	searchCmd.Flags().Float64Var(
		&searchOptions.weight,
		"weight",
		parking.DefaultRequirements().Weight,
		"vehicle weight in tons",
	)
	searchCmd.Flags().Float64Var(
		&searchOptions.length,
		"length",
		parking.DefaultRequirements().Length,
		"vehicle length in meters",
	)
	searchCmd.Flags().Float64Var(
		&searchOptions.radius,
		"radius",
		parking.DefaultRequirements().RadiusKm,
		"search radius in kilometers",
	)
	searchCmd.Flags().BoolVar(
		&searchOptions.facilities,
		"facilities",
		false,
		"require facilities such as toilets or water",
	)
	searchCmd.Flags().BoolVar(
		&searchOptions.overnight,
		"overnight",
		true,
		"require overnight parking to be allowed",
	)
	searchCmd.Flags().BoolVar(
		&searchOptions.fresh,
		"fresh",
		false,
		"ignore the previous search's vehicle profile",
	)
}
