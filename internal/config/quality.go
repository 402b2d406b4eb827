package config

import (
	"fmt"

	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/textsignals"
)

// NewValidator builds the quality validator from the configured thresholds
// and, when set, the vocabulary file.
func (c Config) NewValidator() (*quality.Validator, error) {
	var opts []quality.Option
	if c.VocabularyPath != "" {
		vocab, err := textsignals.LoadVocabularyFile(c.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		opts = append(opts, quality.WithVocabulary(vocab))
	}
	return quality.New(c.Quality, opts...)
}
