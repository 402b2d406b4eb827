// Package textsignals holds the lexical heuristics used to score a summary
// against its source: heading detection, tokenization, paragraph counting and
// list detection.
package textsignals

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary is the static configuration behind every text signal.
type Vocabulary struct {
	stopwords map[string]struct{}
	heading   *regexp.Regexp
	listItem  *regexp.Regexp
}

type vocabularyFile struct {
	HeadingPattern  string   `yaml:"heading_pattern"`
	ListItemPattern string   `yaml:"list_item_pattern"`
	Stopwords       []string `yaml:"stopwords"`
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:'\p{L}+)?`)

var defaultVocab = mustParse(defaultVocabulary)

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	return defaultVocab
}

// LoadVocabulary reads a vocabulary in the embedded YAML format.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return parse(data)
}

// LoadVocabularyFile reads a vocabulary override from path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

func parse(data []byte) (*Vocabulary, error) {
	var vf vocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if vf.HeadingPattern == "" || vf.ListItemPattern == "" {
		return nil, fmt.Errorf("vocabulary: heading_pattern and list_item_pattern are required")
	}
	heading, err := regexp.Compile(vf.HeadingPattern)
	if err != nil {
		return nil, fmt.Errorf("heading_pattern: %w", err)
	}
	listItem, err := regexp.Compile(vf.ListItemPattern)
	if err != nil {
		return nil, fmt.Errorf("list_item_pattern: %w", err)
	}
	v := &Vocabulary{
		stopwords: make(map[string]struct{}, len(vf.Stopwords)),
		heading:   heading,
		listItem:  listItem,
	}
	for _, w := range vf.Stopwords {
		v.stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return v, nil
}

func mustParse(data []byte) *Vocabulary {
	v, err := parse(data)
	if err != nil {
		panic("textsignals: embedded vocabulary: " + err.Error())
	}
	return v
}

// IsStopword reports whether w (lowercase) is filtered out by Tokenize.
func (v *Vocabulary) IsStopword(w string) bool {
	_, ok := v.stopwords[w]
	return ok
}
