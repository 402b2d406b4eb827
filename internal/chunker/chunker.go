// Package chunker splits long document text into pieces that fit a single
// summarisation request.
package chunker

import "strings"

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Tokens carried from the end of one chunk into the next. Zero disables overlap.
}

// DefaultConfig returns the sizes used for summarisation requests.
func DefaultConfig() Config {
	return Config{ChunkSize: 6000}
}

// Split breaks text into chunks of roughly cfg.ChunkSize tokens along
// paragraph boundaries, falling back to sentence boundaries for paragraphs
// that are too large on their own. Text that already fits is returned as a
// single chunk. Blank text yields nil.
func Split(text string, cfg Config) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}
	if EstimateTokens(text) <= cfg.ChunkSize {
		return []string{text}
	}

	var acc accumulator
	acc.cfg = cfg
	for _, para := range splitByParagraphs(text) {
		if EstimateTokens(para) > cfg.ChunkSize {
			acc.emit()
			for _, sent := range splitSentences(para) {
				acc.add(sent, " ")
			}
			acc.emit()
			continue
		}
		acc.add(para, "\n\n")
	}
	acc.emit()
	return acc.chunks
}

type accumulator struct {
	cfg     Config
	chunks  []string
	current strings.Builder
	words   int
}

func (a *accumulator) add(piece, sep string) {
	n := len(strings.Fields(piece))
	if a.words > 0 && tokensForWords(a.words+n) > a.cfg.ChunkSize {
		overlap := overlapText(a.current.String(), a.cfg.ChunkOverlap)
		a.emit()
		if overlap != "" {
			a.current.WriteString(overlap)
			a.words = len(strings.Fields(overlap))
		}
	}
	if a.current.Len() > 0 {
		a.current.WriteString(sep)
	}
	a.current.WriteString(piece)
	a.words += n
}

func (a *accumulator) emit() {
	if s := strings.TrimSpace(a.current.String()); s != "" {
		a.chunks = append(a.chunks, s)
	}
	a.current.Reset()
	a.words = 0
}

// splitByParagraphs splits on blank lines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapText returns roughly the last n tokens of text.
func overlapText(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	target := int(float64(n) / 1.33)
	if target <= 0 || len(words) <= target {
		return ""
	}
	return strings.Join(words[len(words)-target:], " ")
}
