// Command qualitycheck runs the summary quality gate offline against files
// on disk.
package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docguard/internal/config"
	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/supervisor"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	vocabFile string
	pdftotext bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qualitycheck",
		Short: "Check document summaries against the quality gate",
		Long: `qualitycheck scores an existing summary against its source document
using the same length, structure and alignment checks as the service, and
prints the validation report as JSON.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("DOCGUARD_CONFIG"), "YAML file overriding quality thresholds")
	root.PersistentFlags().StringVar(&vocabFile, "vocabulary", os.Getenv("VOCABULARY_PATH"), "vocabulary YAML (stopwords and heading patterns)")
	root.PersistentFlags().BoolVar(&pdftotext, "pdftotext", false, "fall back to pdftotext for unreadable PDFs")

	root.AddCommand(newValidateCmd(), newStatsCmd())
	return root
}

// loadValidator builds a validator from defaults plus the --config and
// --vocabulary flags.
func loadValidator() (*quality.Validator, error) {
	cfg := config.Config{
		Quality:        quality.DefaultConfig(),
		MaxRetries:     supervisor.DefaultMaxRetries,
		VocabularyPath: vocabFile,
	}
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.ApplyFile(f); err != nil {
			return nil, fmt.Errorf("%s: %w", cfgFile, err)
		}
		if vocabFile != "" {
			cfg.VocabularyPath = vocabFile
		}
	}
	return cfg.NewValidator()
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
