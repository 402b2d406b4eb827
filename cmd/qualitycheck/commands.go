package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/parser"
	"github.com/dgallion1/docguard/internal/summary"
	"github.com/spf13/cobra"
)

// errFailed signals a failing report under --strict.
var errFailed = errors.New("summary failed the quality gate")

type validateOptions struct {
	source  string
	summary string
	pages   int
	sizeMB  float64
	strict  bool
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a summary JSON file against its source document",
		Long: `validate parses the source document (txt, md, csv, html, pdf or docx),
measures it, and scores the summary. The summary file holds a JSON object
with "summary", "sections", "diagnoses", "providers" and "medications".

--pages and --size-mb override the measured values, which is useful when the
source is a text extract of a larger original.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "source document path")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "summary JSON path")
	cmd.Flags().IntVar(&opts.pages, "pages", -1, "page count of the original document")
	cmd.Flags().Float64Var(&opts.sizeMB, "size-mb", -1, "size of the original document in MB")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when the summary fails")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("summary")
	return cmd
}

func runValidate(w io.Writer, opts validateOptions) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}
	text, stats, err := measure(opts.source)
	if err != nil {
		return err
	}
	if opts.pages >= 0 {
		stats.PageCount = opts.pages
	}
	if opts.sizeMB >= 0 {
		stats.SizeMB = opts.sizeMB
	}

	raw, err := os.ReadFile(opts.summary)
	if err != nil {
		return fmt.Errorf("read summary: %w", err)
	}
	var s summary.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("parse summary %s: %w", opts.summary, err)
	}

	report := v.Validate(text, s, stats, 0)
	if err := writeJSON(w, report); err != nil {
		return err
	}
	if opts.strict && !report.Passed {
		return errFailed
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print page, character and size statistics for a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stats, err := measure(file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "document path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// measure parses a document and returns its text and stats.
func measure(path string) (string, docstats.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", docstats.Stats{}, fmt.Errorf("read source: %w", err)
	}
	tree, err := parser.ParseBytes(data, path, parser.Options{PDFFallbackPdftotext: pdftotext})
	if err != nil {
		return "", docstats.Stats{}, err
	}
	text := tree.Text()
	return text, docstats.Collect(text, tree.Pages(), data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
