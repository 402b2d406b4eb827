// Package summary defines the structured summary produced for a document.
package summary

import (
	"maps"
	"slices"
	"strings"
)

// EntityKind names one of the fixed entity lists carried by a Summary.
type EntityKind string

const (
	Diagnoses   EntityKind = "diagnoses"
	Providers   EntityKind = "providers"
	Medications EntityKind = "medications"
)

// EntityKinds lists every entity kind in a stable order.
var EntityKinds = []EntityKind{Diagnoses, Providers, Medications}

// Summary is a machine-generated condensation of a document.
//
// Primary is the designated narrative. Sections holds any other labelled
// narrative blocks. The entity lists hold extracted facts, one per item.
type Summary struct {
	Primary     string            `json:"summary,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
	Diagnoses   []string          `json:"diagnoses,omitempty"`
	Providers   []string          `json:"providers,omitempty"`
	Medications []string          `json:"medications,omitempty"`
}

// Text returns the narrative used for validation: the primary narrative if it
// is non-empty, otherwise every section joined in label order.
func (s Summary) Text() string {
	if strings.TrimSpace(s.Primary) != "" {
		return s.Primary
	}
	if len(s.Sections) == 0 {
		return ""
	}
	labels := slices.Sorted(maps.Keys(s.Sections))
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if v := s.Sections[label]; strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Entities returns the list for kind. The returned slice must not be modified.
func (s Summary) Entities(kind EntityKind) []string {
	switch kind {
	case Diagnoses:
		return s.Diagnoses
	case Providers:
		return s.Providers
	case Medications:
		return s.Medications
	}
	return nil
}

// WithEntities returns a copy of s with the list for kind replaced.
func (s Summary) WithEntities(kind EntityKind, items []string) Summary {
	out := s.Clone()
	items = slices.Clone(items)
	switch kind {
	case Diagnoses:
		out.Diagnoses = items
	case Providers:
		out.Providers = items
	case Medications:
		out.Medications = items
	}
	return out
}

// HasEntities reports whether any entity list has at least one item.
func (s Summary) HasEntities() bool {
	for _, k := range EntityKinds {
		if len(s.Entities(k)) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s Summary) Clone() Summary {
	return Summary{
		Primary:     s.Primary,
		Sections:    maps.Clone(s.Sections),
		Diagnoses:   slices.Clone(s.Diagnoses),
		Providers:   slices.Clone(s.Providers),
		Medications: slices.Clone(s.Medications),
	}
}

// SplitEntities turns a newline-delimited entity field into items,
// dropping blank lines and surrounding whitespace.
func SplitEntities(field string) []string {
	var items []string
	for _, line := range strings.Split(field, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// JoinEntities is the inverse of SplitEntities.
func JoinEntities(items []string) string {
	return strings.Join(items, "\n")
}
