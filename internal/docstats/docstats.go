// Package docstats reduces an extracted document to the few numbers that
// describe its scale.
package docstats

import "unicode/utf8"

const bytesPerMB = 1024 * 1024

// Stats is an immutable snapshot of document scale.
type Stats struct {
	PageCount int     `json:"page_count"`
	CharCount int     `json:"char_count"`
	SizeMB    float64 `json:"size_mb"`
}

// Collect builds Stats from extracted text, the page records and the raw
// file bytes. Missing inputs produce zero fields. A nil page list needs a
// type argument (Collect[struct{}]); callers that only know a page count
// use FromCounts.
func Collect[P any](text string, pages []P, file []byte) Stats {
	return FromCounts(text, len(pages), len(file))
}

// FromCounts builds Stats from text, a page count and a file size in bytes.
// CharCount is in characters, not bytes.
func FromCounts(text string, pages, fileBytes int) Stats {
	return Stats{
		PageCount: pages,
		CharCount: utf8.RuneCountInString(text),
		SizeMB:    float64(fileBytes) / bytesPerMB,
	}
}
