package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-extractor/internal/config"
	"github.com/jonathan/job-extractor/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a job posting from a URL or HTML file",
	Long:  "Extract clean job posting text from a URL or a saved HTML file, writing the text and extraction metadata to the output directory.",
	RunE:  runExtract,
}

var (
	extractURL      string
	extractHTMLFile string
	extractOutDir   string
	extractNoBrowser bool
	extractVerbose  bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractURL, "url", "u", "", "URL to extract the job posting from")
	extractCmd.Flags().StringVar(&extractHTMLFile, "html-file", "", "Path to a saved HTML file to extract from")
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", "", "Output directory (required)")
	extractCmd.Flags().BoolVar(&extractNoBrowser, "no-browser", false, "Disable the headless browser strategy")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	extractCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(extractCmd)
}

// extractionMeta is the shape of job_posting.meta.json.
type extractionMeta struct {
	URL              string             `json:"url,omitempty"`
	Strategy         string             `json:"strategy"`
	Confidence       float64            `json:"confidence"`
	StructuredFields map[string]any     `json:"structured_fields,omitempty"`
	Endpoints        []string           `json:"endpoints,omitempty"`
	Attempts         []pipeline.Attempt `json:"attempts,omitempty"`
	FromCache        bool               `json:"from_cache"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractURL == "" && extractHTMLFile == "" {
		return fmt.Errorf("either --url or --html-file must be provided")
	}
	if extractURL != "" && extractHTMLFile != "" {
		return fmt.Errorf("--url and --html-file are mutually exclusive; provide only one")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if extractNoBrowser {
		cfg.DisableBrowser = true
	}
	if extractVerbose {
		cfg.Verbose = true
	}

	ctx := cmd.Context()
	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	req := pipeline.ExtractionRequest{URL: extractURL}
	if extractHTMLFile != "" {
		html, err := os.ReadFile(extractHTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		req.RawHTML = string(html)
	}

	result, err := p.ExtractJobPosting(ctx, req)
	if err != nil {
		var extErr *pipeline.ExtractionError
		if errors.As(err, &extErr) {
			fmt.Fprintf(os.Stderr, "Extraction failed (%s): %s\n", extErr.ReasonCode, extErr.Message)
			for _, suggestion := range extErr.Suggestions {
				fmt.Fprintf(os.Stderr, "  - %s\n", suggestion)
			}
		}
		return err
	}

	if err := writeOutput(extractOutDir, extractURL, result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Successfully extracted job posting (strategy: %s)\n", result.Strategy)
	fmt.Fprintf(os.Stdout, "Text: %s/job_posting.txt\n", extractOutDir)
	fmt.Fprintf(os.Stdout, "Metadata: %s/job_posting.meta.json\n", extractOutDir)
	return nil
}

// writeOutput writes the extracted text and metadata into outDir.
func writeOutput(outDir, urlStr string, result *pipeline.ExtractionResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	textPath := filepath.Join(outDir, "job_posting.txt")
	if err := os.WriteFile(textPath, []byte(result.Text+"\n"), 0o644); err != nil {
		return err
	}

	meta := extractionMeta{
		URL:              urlStr,
		Strategy:         string(result.Strategy),
		Confidence:       result.Confidence,
		StructuredFields: result.StructuredFields,
		Endpoints:        result.Endpoints,
		Attempts:         result.Attempts,
		FromCache:        result.FromCache,
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	metaPath := filepath.Join(outDir, "job_posting.meta.json")
	return os.WriteFile(metaPath, append(encoded, '\n'), 0o644)
}
