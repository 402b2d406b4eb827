package textsignals

import (
	"iter"
	"strings"
	"unicode"

	"github.com/dgallion1/docguard/internal/summary"
)

// IsHeading reports whether line is a bare section label such as "Plan:".
func (v *Vocabulary) IsHeading(line string) bool {
	return v.heading.MatchString(line)
}

// StripHeaders removes heading lines. A blank-line run that meets across a
// removed heading is collapsed to one blank line; blank runs elsewhere are
// kept as they are. Text without headings is returned unchanged.
func (v *Vocabulary) StripHeaders(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	removed := false
	// dropBlanks is set when a heading sat right after a blank line, so the
	// blanks that followed it would join that run.
	dropBlanks := false
	for _, line := range lines {
		if v.IsHeading(line) {
			removed = true
			if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
				dropBlanks = true
			}
			continue
		}
		if dropBlanks && strings.TrimSpace(line) == "" {
			continue
		}
		dropBlanks = false
		out = append(out, line)
	}
	if !removed {
		return text
	}
	return strings.Join(out, "\n")
}

// Tokenize yields lowercase word tokens, skipping stopwords and purely
// numeric tokens. The sequence is lazy and may be ranged over repeatedly.
func (v *Vocabulary) Tokenize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for {
			loc := tokenRe.FindStringIndex(rest)
			if loc == nil {
				return
			}
			tok := strings.ToLower(rest[loc[0]:loc[1]])
			rest = rest[loc[1]:]
			if v.IsStopword(tok) || isNumeric(tok) {
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// TokenSet collects the distinct tokens of text.
func (v *Vocabulary) TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for tok := range v.Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// CountParagraphs counts runs of non-blank lines separated by blank lines.
func CountParagraphs(text string) int {
	n := 0
	inPara := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			inPara = false
			continue
		}
		if !inPara {
			n++
			inPara = true
		}
	}
	return n
}

// CountHeaders counts heading lines.
func (v *Vocabulary) CountHeaders(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if v.IsHeading(line) {
			n++
		}
	}
	return n
}

// HasStructuredList reports whether body contains at least two list items,
// or the summary carries any extracted entities.
func (v *Vocabulary) HasStructuredList(body string, s summary.Summary) bool {
	if s.HasEntities() {
		return true
	}
	items := 0
	for _, line := range strings.Split(body, "\n") {
		if v.listItem.MatchString(line) {
			items++
			if items >= 2 {
				return true
			}
		}
	}
	return false
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return tok != ""
}

// Package-level helpers use the embedded vocabulary.

func StripHeaders(text string) string { return defaultVocab.StripHeaders(text) }

func Tokenize(text string) iter.Seq[string] { return defaultVocab.Tokenize(text) }

func CountHeaders(text string) int { return defaultVocab.CountHeaders(text) }

func HasStructuredList(body string, s summary.Summary) bool {
	return defaultVocab.HasStructuredList(body, s)
}
