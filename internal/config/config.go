// Package config loads service settings from the environment, with an
// optional YAML file for quality thresholds.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/supervisor"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Review store
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	APIKey string

	// Claude summarisation
	AnthropicAPIKey  string
	AnthropicModel   string
	LLMRatePerSec    float64
	LLMBurst         int
	LLMMaxAttempts   int
	ChunkConcurrency int
	ChunkSize        int
	ChunkOverlap     int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Quality gate
	ConfigFile     string
	Quality        quality.Config
	MaxRetries     int
	VocabularyPath string

	// Folder trigger
	WatchDirs     []string
	WatchUserID   string
	WatchDebounce time.Duration
}

// fileOverrides is the shape of the DOCGUARD_CONFIG file. Keys that are
// absent keep their environment or default values.
type fileOverrides struct {
	Quality    quality.Config `yaml:"quality"`
	MaxRetries *int           `yaml:"max_retries"`
	Vocabulary string         `yaml:"vocabulary"`
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		APIKey: os.Getenv("DOCGUARD_API_KEY"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		LLMRatePerSec:    envFloat("LLM_RATE_PER_SEC", 2),
		LLMBurst:         envInt("LLM_BURST", 4),
		LLMMaxAttempts:   envInt("LLM_MAX_ATTEMPTS", 3),
		ChunkConcurrency: envInt("CHUNK_CONCURRENCY", 4),
		ChunkSize:        envInt("CHUNK_SIZE", 6000),
		ChunkOverlap:     envInt("CHUNK_OVERLAP", 0),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ConfigFile:     os.Getenv("DOCGUARD_CONFIG"),
		Quality:        quality.DefaultConfig(),
		MaxRetries:     envInt("MAX_RETRIES", supervisor.DefaultMaxRetries),
		VocabularyPath: os.Getenv("VOCABULARY_PATH"),

		WatchDirs:     envList("WATCH_DIRS"),
		WatchUserID:   envOr("WATCH_USER_ID", "inbox"),
		WatchDebounce: envDuration("WATCH_DEBOUNCE", 2*time.Second),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ChunkConcurrency <= 0 {
		cfg.ChunkConcurrency = 4
	}
	if cfg.LLMMaxAttempts <= 0 {
		cfg.LLMMaxAttempts = 3
	}

	if cfg.ConfigFile != "" {
		f, err := os.Open(cfg.ConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()
		if err := cfg.ApplyFile(f); err != nil {
			return cfg, fmt.Errorf("%s: %w", cfg.ConfigFile, err)
		}
	}
	return cfg, nil
}

// ApplyFile merges YAML overrides from r into c.
func (c *Config) ApplyFile(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	ov := fileOverrides{Quality: c.Quality}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.Quality = ov.Quality
	if ov.MaxRetries != nil {
		c.MaxRetries = *ov.MaxRetries
	}
	if ov.Vocabulary != "" {
		c.VocabularyPath = ov.Vocabulary
	}
	return nil
}

func (c Config) Validate() error {
	if c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCGUARD_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be >= 0, got %d", c.MaxRetries)
	}
	if err := c.Quality.Validate(); err != nil {
		return fmt.Errorf("quality thresholds: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
