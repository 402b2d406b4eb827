package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docguard/internal/summary"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const summarySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {"type": "string"},
    "sections": {"type": "object", "additionalProperties": {"type": "string"}},
    "diagnoses": {"type": "string"},
    "providers": {"type": "string"},
    "medications": {"type": "string"}
  }
}`

var summarySchema = mustCompileSchema("summary.json", summarySchemaJSON)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// wireSummary is the model's reply. Entity fields are newline-delimited.
type wireSummary struct {
	Summary     string            `json:"summary"`
	Sections    map[string]string `json:"sections"`
	Diagnoses   string            `json:"diagnoses"`
	Providers   string            `json:"providers"`
	Medications string            `json:"medications"`
}

// parseSummary validates a model reply against the summary schema and
// converts it to a summary.Summary.
func parseSummary(raw string) (summary.Summary, error) {
	text := stripCodeBlock(raw)

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return summary.Summary{}, fmt.Errorf("parse summary json: %w (raw: %s)", err, truncate(text, 200))
	}
	if err := summarySchema.Validate(doc); err != nil {
		return summary.Summary{}, fmt.Errorf("summary does not match schema: %w", err)
	}

	var w wireSummary
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return summary.Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	s := summary.Summary{
		Primary:     strings.TrimSpace(w.Summary),
		Diagnoses:   summary.SplitEntities(w.Diagnoses),
		Providers:   summary.SplitEntities(w.Providers),
		Medications: summary.SplitEntities(w.Medications),
	}
	for label, body := range w.Sections {
		if body = strings.TrimSpace(body); body == "" {
			continue
		}
		if s.Sections == nil {
			s.Sections = make(map[string]string, len(w.Sections))
		}
		s.Sections[label] = body
	}
	return s, nil
}
