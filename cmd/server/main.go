package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docguard/internal/api"
	"github.com/dgallion1/docguard/internal/chunker"
	"github.com/dgallion1/docguard/internal/config"
	"github.com/dgallion1/docguard/internal/llm"
	"github.com/dgallion1/docguard/internal/parser"
	"github.com/dgallion1/docguard/internal/pathstore"
	"github.com/dgallion1/docguard/internal/pipeline"
	"github.com/dgallion1/docguard/internal/supervisor"
	"github.com/dgallion1/docguard/internal/watch"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	validator, err := cfg.NewValidator()
	if err != nil {
		log.Error("invalid quality configuration", "error", err)
		os.Exit(1)
	}
	sup, err := supervisor.New(validator, supervisor.Options{MaxRetries: cfg.MaxRetries, Logger: log})
	if err != nil {
		log.Error("invalid supervisor configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	reviews := pathstore.NewReviewStore(ps)
	claude := llm.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	stats := llm.NewLLMStats(time.Hour)
	summarizer := llm.NewSummarizer(claude, llm.Options{
		Chunk:       chunker.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
		Concurrency: cfg.ChunkConcurrency,
		MaxAttempts: cfg.LLMMaxAttempts,
		RatePerSec:  cfg.LLMRatePerSec,
		Burst:       cfg.LLMBurst,
		Stats:       stats,
		Logger:      log,
	})

	// Initialize pipeline.
	worker := pipeline.NewWorker(summarizer, sup, reviews, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, log)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, worker, log)
	orch.Start(ctx)

	if len(cfg.WatchDirs) > 0 {
		go runWatcher(ctx, cfg, orch, log)
	}

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Reviews:      reviews,
		Validator:    validator,
		LLMStats:     stats,
		Model:        claude.Model(),
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		claude.Close()
		ps.Close()
	}()

	log.Info("starting docguard", "port", cfg.Port, "model", claude.Model(), "max_retries", sup.MaxRetries())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// runWatcher submits files dropped into the inbox directories as jobs.
func runWatcher(ctx context.Context, cfg config.Config, orch *pipeline.Orchestrator, log *slog.Logger) {
	wcfg := watch.Config{
		Dirs:        cfg.WatchDirs,
		Debounce:    cfg.WatchDebounce,
		InitialScan: true,
		Accept:      parser.IsSupportedExtension,
	}
	err := watch.Run(ctx, wcfg, log, func(path string) {
		job, err := pipeline.NewFileJob(cfg.WatchUserID, path, cfg.MaxUploadBytes)
		if err != nil {
			log.Warn("skipping inbox file", "path", path, "error", err)
			return
		}
		if err := orch.Submit(job); err != nil {
			log.Error("submit inbox file", "path", path, "error", err)
			return
		}
		log.Info("queued inbox file", "path", path, "job_id", job.ID)
	})
	if err != nil {
		log.Error("folder watcher stopped", "error", err)
	}
}
