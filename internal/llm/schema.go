package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// extractionSchemaJSON is the JSON Schema the model response must satisfy.
// It is deliberately permissive about optional fields but strict about
// types, so a hallucinated shape fails loudly instead of decoding to zeros.
const extractionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "JobPostingExtraction",
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "company": {"type": "string"},
    "location": {"type": "string"},
    "salary": {"type": "string"},
    "employment_type": {"type": "string"},
    "description": {"type": "string"},
    "responsibilities": {"type": "array", "items": {"type": "string"}},
    "qualifications": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": true
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func extractionSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(extractionSchemaJSON))
	})
	return schema, schemaErr
}

// validateExtraction checks a raw JSON document against the extraction schema.
func validateExtraction(raw string) error {
	s, err := extractionSchema()
	if err != nil {
		return fmt.Errorf("load extraction schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("validate extraction: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("extraction schema violations: %s", strings.Join(problems, "; "))
}
