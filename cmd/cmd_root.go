// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	_ = godotenv.Load()
}

var rootCmd = &cobra.Command{
	Use:   "vanpaikka",
	Short: "finds camper parking spots across Finland",
	Long: `
vanpaikka aggregates camper parking spot candidates from OpenStreetMap,
Google Places and official Finnish municipal sources, reconciles duplicates
between them and filters the result against your vehicle's profile.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
