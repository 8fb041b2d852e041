// Package main provides the entry point for the job posting extraction agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "extract_agent",
	Short: "Job posting content extraction pipeline",
	Long:  "Extracts clean job posting text from arbitrary job board and careers page URLs, cascading from cheap structural extraction up to AI-assisted and headless-browser strategies.",
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
