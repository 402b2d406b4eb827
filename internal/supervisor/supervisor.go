// Package supervisor drives the bounded retry loop that asks a summarizer for
// further attempts until a summary passes quality validation.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/summary"
)

// DefaultMaxRetries is the retry budget used when none is configured.
const DefaultMaxRetries = 2

// ErrInvalidConfig is returned by New for an unusable configuration.
var ErrInvalidConfig = errors.New("invalid supervisor config")

// Summarizer produces a structured summary of source text. Implementations
// own any chunking of the input.
type Summarizer interface {
	Summarise(ctx context.Context, text string) (summary.Summary, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string) (summary.Summary, error)

func (f SummarizerFunc) Summarise(ctx context.Context, text string) (summary.Summary, error) {
	return f(ctx, text)
}

// Validator is the scoring capability the supervisor depends on.
type Validator interface {
	Validate(source string, s summary.Summary, stats docstats.Stats, retries int) quality.Report
}

// Result is the terminal outcome of a supervised summary.
type Result struct {
	Validation quality.Report  `json:"validation"`
	Summary    summary.Summary `json:"summary"`
}

// Options configures a Supervisor.
type Options struct {
	MaxRetries int
	Logger     *slog.Logger
}

// Supervisor runs validation and the retry loop. It holds no per-document
// state, so one instance may serve many documents concurrently.
type Supervisor struct {
	validator  Validator
	maxRetries int
	log        *slog.Logger
}

// New returns a Supervisor. A negative retry budget is rejected.
func New(v Validator, opts Options) (*Supervisor, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: validator is required", ErrInvalidConfig)
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must be >= 0, got %d", ErrInvalidConfig, opts.MaxRetries)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Supervisor{validator: v, maxRetries: opts.MaxRetries, log: log}, nil
}

// MaxRetries returns the retry budget.
func (s *Supervisor) MaxRetries() int {
	return s.maxRetries
}

// Supervise requests an initial summary, validates it and, if it fails,
// continues with RetryAndMerge.
func (s *Supervisor) Supervise(ctx context.Context, sum Summarizer, source string, stats docstats.Stats) (Result, error) {
	initial, err := sum.Summarise(ctx, source)
	if err != nil {
		return Result{}, fmt.Errorf("initial summary: %w", err)
	}
	report := s.validator.Validate(source, initial, stats, 0)
	return s.RetryAndMerge(ctx, sum, source, stats, initial, report)
}

// RetryAndMerge requests up to MaxRetries further attempts while the
// candidate fails validation. Entity lists are union-merged across attempts;
// narrative comes from the latest attempt. Exhausting the budget is not an
// error: the last report is returned with Passed false. A summarizer error
// ends the loop without a further attempt; it is wrapped with the attempt
// number and still matches with errors.Is.
func (s *Supervisor) RetryAndMerge(ctx context.Context, sum Summarizer, source string, stats docstats.Stats, initial summary.Summary, initialReport quality.Report) (Result, error) {
	if initialReport.Passed {
		initialReport.Retries = 0
		return Result{Validation: initialReport, Summary: initial}, nil
	}

	best := initial
	report := initialReport
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		next, err := sum.Summarise(ctx, source)
		if err != nil {
			return Result{}, fmt.Errorf("retry %d: %w", attempt, err)
		}

		best = Merge(best, next)
		report = s.validator.Validate(source, best, stats, attempt)

		s.log.Info("summary attempt",
			"attempt", attempt,
			"passed", report.Passed,
			"length_score", report.LengthScore,
			"content_alignment", report.ContentAlignment,
		)
		if report.Passed {
			return Result{Validation: report, Summary: best}, nil
		}
	}

	if s.maxRetries > 0 {
		s.log.Warn("retry budget exhausted",
			"max_retries", s.maxRetries,
			"length_score", report.LengthScore,
			"content_alignment", report.ContentAlignment,
		)
	}
	return Result{Validation: report, Summary: best}, nil
}

// Merge combines the running best summary with a newer attempt. Narrative
// fields come from next; entity lists are the ordered union of both.
func Merge(best, next summary.Summary) summary.Summary {
	merged := summary.Summary{
		Primary:  next.Primary,
		Sections: next.Clone().Sections,
	}
	for _, kind := range summary.EntityKinds {
		merged = merged.WithEntities(kind, union(best.Entities(kind), next.Entities(kind)))
	}
	return merged
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
