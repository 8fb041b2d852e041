// Package llm - extractor.go turns raw page text into a structured job
// posting via the model. The model output is treated as hostile input:
// fenced, truncated, and decorated responses all get a repair pass before
// schema validation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-extractor/internal/jsonx"
)

// maxInputChars caps the text sent to the model. Job postings rarely exceed
// a few thousand words; anything past this is page chrome.
const maxInputChars = 60000

// Extraction is the structured result of an AI-assisted extraction.
type Extraction struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Salary           string   `json:"salary"`
	EmploymentType   string   `json:"employment_type"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Qualifications   []string `json:"qualifications"`
}

// Empty reports whether the extraction carries no usable content.
func (e *Extraction) Empty() bool {
	return e.Title == "" && e.Description == "" &&
		len(e.Responsibilities) == 0 && len(e.Qualifications) == 0
}

// Text renders the extraction as plain text in reading order.
func (e *Extraction) Text() string {
	var sb strings.Builder
	writeLine := func(s string) {
		if s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	writeLine(e.Title)
	writeLine(e.Company)
	writeLine(e.Location)
	writeLine(e.Salary)
	writeLine(e.EmploymentType)
	if e.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Description)
		sb.WriteString("\n")
	}
	writeList := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n")
		sb.WriteString(header)
		sb.WriteString(":\n")
		for _, item := range items {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}
	writeList("Responsibilities", e.Responsibilities)
	writeList("Qualifications", e.Qualifications)
	return strings.TrimSpace(sb.String())
}

// Fields returns the scalar fields as a map, omitting empties.
func (e *Extraction) Fields() map[string]string {
	fields := make(map[string]string)
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	put("title", e.Title)
	put("company", e.Company)
	put("location", e.Location)
	put("salary", e.Salary)
	put("employment_type", e.EmploymentType)
	return fields
}

// ParseError indicates the model response could not be turned into a valid
// extraction, even after repair.
type ParseError struct {
	Message  string
	Response string // truncated raw response for diagnostics
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse LLM response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse LLM response: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobPosting")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", ["string"]
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Use empty string or empty array for fields the text does not contain.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// JobPostingSchema returns the extraction schema for job postings.
func JobPostingSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobPosting",
		Description: `You are an expert job posting parser. COPY TEXT VERBATIM - do not paraphrase, summarize, or reword.
Your task is to extract the job posting content from a raw web page dump.
The dump may contain navigation menus, cookie banners, footers, and related-job teasers: EXCLUDE all of those.
EXCLUDE: Application form fields, EEO statements, legal disclaimers, generic "About Company" boilerplate.`,
		Fields: []SchemaField{
			{
				Name:        "title",
				Type:        "\"string\"",
				Description: "The job title exactly as posted",
				Required:    true,
			},
			{
				Name:        "company",
				Type:        "\"string\"",
				Description: "The hiring company name",
				Required:    false,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "Job location, including remote/hybrid designation if stated",
				Required:    false,
			},
			{
				Name:        "salary",
				Type:        "\"string\"",
				Description: "Salary or compensation range, verbatim",
				Required:    false,
			},
			{
				Name:        "employment_type",
				Type:        "\"string\"",
				Description: "Full-time, part-time, contract, internship",
				Required:    false,
			},
			{
				Name:        "description",
				Type:        "\"string\"",
				Description: "The full role description, verbatim, excluding page chrome",
				Required:    true,
			},
			{
				Name:        "responsibilities",
				Type:        "[\"string\"]",
				Description: "Job duties, day-to-day work - copy each responsibility verbatim",
				Required:    false,
			},
			{
				Name:        "qualifications",
				Type:        "[\"string\"]",
				Description: "Requirements, qualifications, skills needed - copy each verbatim",
				Required:    false,
			},
		},
	}
}

// Extractor runs job-posting extraction through an LLM client.
type Extractor struct {
	client Client
	tier   ModelTier
}

// NewExtractor creates an Extractor around client. Extraction over long messy
// input defaults to the standard tier.
func NewExtractor(client Client) *Extractor {
	return &Extractor{client: client, tier: TierStandard}
}

// Extract asks the model to pull the job posting out of pageText and parses
// the response defensively.
func (x *Extractor) Extract(ctx context.Context, pageText string) (*Extraction, error) {
	if len(pageText) > maxInputChars {
		pageText = pageText[:maxInputChars]
	}

	prompt := BuildExtractionPrompt(JobPostingSchema(), pageText)
	response, err := x.client.GenerateJSON(ctx, prompt, x.tier)
	if err != nil {
		return nil, fmt.Errorf("LLM extraction failed: %w", err)
	}

	return ParseExtraction(response)
}

// ParseExtraction parses a model response into an Extraction. It tolerates
// code fences, surrounding prose, and truncated JSON; what survives repair
// must still validate against the extraction schema.
func ParseExtraction(response string) (*Extraction, error) {
	candidate := jsonx.CleanCodeFences(response)

	raw, ok := parseCandidate(candidate)
	if !ok {
		span, _ := jsonx.FirstBalancedSpan(candidate)
		if span == "" {
			return nil, &ParseError{Message: "no JSON in response", Response: truncateForError(response)}
		}
		raw, ok = parseCandidate(span)
		if !ok {
			repaired, err := jsonx.Repair(span)
			if err != nil {
				return nil, &ParseError{Message: "unrepairable JSON", Response: truncateForError(response), Cause: err}
			}
			raw, ok = parseCandidate(repaired)
			if !ok {
				return nil, &ParseError{Message: "repaired JSON still invalid", Response: truncateForError(response)}
			}
		}
	}

	if err := validateExtraction(raw); err != nil {
		return nil, &ParseError{Message: "response failed schema validation", Response: truncateForError(response), Cause: err}
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, &ParseError{Message: "decode extraction", Response: truncateForError(response), Cause: err}
	}
	if extraction.Empty() {
		return nil, &ParseError{Message: "extraction is empty", Response: truncateForError(response)}
	}
	return &extraction, nil
}

func parseCandidate(candidate string) (string, bool) {
	var probe map[string]any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return "", false
	}
	return candidate, true
}

const maxErrorResponseLen = 200

func truncateForError(response string) string {
	if len(response) > maxErrorResponseLen {
		return response[:maxErrorResponseLen] + "..."
	}
	return response
}
