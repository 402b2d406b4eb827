// Package quality scores a candidate summary against its source document on
// three independent axes: length, structure and lexical alignment.
package quality

import (
	"unicode/utf8"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/summary"
	"github.com/dgallion1/docguard/internal/textsignals"
)

// Checks holds the per-axis outcome of a validation.
type Checks struct {
	// MultiPassRequired records which length target applied; it never fails
	// a report on its own.
	MultiPassRequired bool `json:"multi_pass_required"`
	LengthOK          bool `json:"length_ok"`
	StructureOK       bool `json:"structure_ok"`
	AlignmentOK       bool `json:"alignment_ok"`
}

// Report is the immutable result of one validation.
type Report struct {
	Passed           bool           `json:"passed"`
	Checks           Checks         `json:"checks"`
	LengthScore      float64        `json:"length_score"`
	ContentAlignment float64        `json:"content_alignment"`
	DocStats         docstats.Stats `json:"doc_stats"`
	Retries          int            `json:"retries"`
}

// Validator scores summaries. It is safe for concurrent use.
type Validator struct {
	cfg   Config
	vocab *textsignals.Vocabulary
}

// Option customizes a Validator.
type Option func(*Validator)

// WithVocabulary replaces the embedded text-signal vocabulary.
func WithVocabulary(v *textsignals.Vocabulary) Option {
	return func(val *Validator) {
		if v != nil {
			val.vocab = v
		}
	}
}

// New returns a Validator, rejecting an invalid configuration up front.
func New(cfg Config, opts ...Option) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := &Validator{cfg: cfg, vocab: textsignals.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Config returns the thresholds in use.
func (v *Validator) Config() Config {
	return v.cfg
}

// Validate scores s against source. retries is copied into the report.
func (v *Validator) Validate(source string, s summary.Summary, stats docstats.Stats, retries int) Report {
	body := s.Text()

	multiPass := v.MultiPassRequired(stats)
	target := v.cfg.BaselineMinChars
	if multiPass {
		target = v.cfg.MultiPassMinChars
	}

	lengthScore := LengthScore(utf8.RuneCountInString(body), target)
	alignment := v.Alignment(source, v.vocab.StripHeaders(body))

	checks := Checks{
		MultiPassRequired: multiPass,
		LengthOK:          lengthScore >= v.cfg.MinLengthRatio,
		StructureOK:       v.structureOK(body, s),
		AlignmentOK:       alignment >= v.cfg.MinAlignment,
	}

	return Report{
		Passed:           checks.LengthOK && checks.StructureOK && checks.AlignmentOK,
		Checks:           checks,
		LengthScore:      lengthScore,
		ContentAlignment: alignment,
		DocStats:         stats,
		Retries:          retries,
	}
}

// MultiPassRequired reports whether stats exceed any scale cutoff.
func (v *Validator) MultiPassRequired(stats docstats.Stats) bool {
	return stats.PageCount > v.cfg.MultiPassPages ||
		stats.CharCount > v.cfg.MultiPassChars ||
		stats.SizeMB > v.cfg.MultiPassSizeMB
}

func (v *Validator) structureOK(body string, s summary.Summary) bool {
	if !v.vocab.HasStructuredList(body, s) {
		return false
	}
	return v.vocab.CountHeaders(body) >= v.cfg.MinHeaders ||
		textsignals.CountParagraphs(body) >= v.cfg.MinParagraphs
}

// Alignment is the Jaccard overlap of the filtered token sets of source and
// summary. It is 0 when either side has no tokens left after filtering.
func (v *Validator) Alignment(source, summaryText string) float64 {
	a := v.vocab.TokenSet(source)
	b := v.vocab.TokenSet(summaryText)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range b {
		if _, ok := a[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// LengthScore is length/target capped at 1. Both are in characters. A zero target scores 1.
func LengthScore(length, target int) float64 {
	if target <= 0 {
		return 1.0
	}
	return min(1.0, float64(length)/float64(target))
}
