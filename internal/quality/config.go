package quality

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New for a configuration that can never
// produce a meaningful verdict.
var ErrInvalidConfig = errors.New("invalid quality config")

// Config holds the validator thresholds.
type Config struct {
	// Minimum summary length in characters for ordinary documents.
	BaselineMinChars int `yaml:"baseline_min_chars" json:"baseline_min_chars"`
	// Minimum summary length once the document is large enough for multi-pass.
	MultiPassMinChars int `yaml:"multi_pass_min_chars" json:"multi_pass_min_chars"`

	MinLengthRatio float64 `yaml:"min_length_ratio" json:"min_length_ratio"`
	MinAlignment   float64 `yaml:"min_alignment" json:"min_alignment"`

	// Template adherence: enough headings, or failing that enough paragraphs.
	MinHeaders    int `yaml:"min_headers" json:"min_headers"`
	MinParagraphs int `yaml:"min_paragraphs" json:"min_paragraphs"`

	// Scale cutoffs; exceeding any of them marks the document multi-pass.
	MultiPassPages  int     `yaml:"multi_pass_pages" json:"multi_pass_pages"`
	MultiPassChars  int     `yaml:"multi_pass_chars" json:"multi_pass_chars"`
	MultiPassSizeMB float64 `yaml:"multi_pass_size_mb" json:"multi_pass_size_mb"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		BaselineMinChars:  400,
		MultiPassMinChars: 1200,
		MinLengthRatio:    0.75,
		MinAlignment:      0.8,
		MinHeaders:        3,
		MinParagraphs:     3,
		MultiPassPages:    100,
		MultiPassChars:    200_000,
		MultiPassSizeMB:   10.0,
	}
}

// Validate rejects negative thresholds and ratios outside [0,1].
func (c Config) Validate() error {
	ints := []struct {
		name string
		v    int
	}{
		{"baseline_min_chars", c.BaselineMinChars},
		{"multi_pass_min_chars", c.MultiPassMinChars},
		{"min_headers", c.MinHeaders},
		{"min_paragraphs", c.MinParagraphs},
		{"multi_pass_pages", c.MultiPassPages},
		{"multi_pass_chars", c.MultiPassChars},
	}
	for _, f := range ints {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.MultiPassSizeMB < 0 {
		return fmt.Errorf("%w: multi_pass_size_mb must be >= 0, got %g", ErrInvalidConfig, c.MultiPassSizeMB)
	}
	ratios := []struct {
		name string
		v    float64
	}{
		{"min_length_ratio", c.MinLengthRatio},
		{"min_alignment", c.MinAlignment},
	}
	for _, f := range ratios {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %g", ErrInvalidConfig, f.name, f.v)
		}
	}
	return nil
}
