package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/job-extractor/internal/config"
	"github.com/jonathan/job-extractor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP API server",
	Long:  "Run an HTTP server exposing POST /extract for the job posting extraction pipeline.",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	p, cleanup, err := buildPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(server.Config{Addr: cfg.ListenAddr}, p).Start()
}
