package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/parser"
	"github.com/dgallion1/docguard/internal/pathstore"
	"github.com/dgallion1/docguard/internal/supervisor"
)

// ReviewStore persists supervision results.
type ReviewStore interface {
	FindByHash(ctx context.Context, userID, hash string) (string, bool, error)
	PutReview(ctx context.Context, r pathstore.Review) error
}

// Worker processes a single document job.
type Worker struct {
	summarizer supervisor.Summarizer
	supervisor *supervisor.Supervisor
	store      ReviewStore
	parserOpts parser.Options
	log        *slog.Logger
}

func NewWorker(sum supervisor.Summarizer, sup *supervisor.Supervisor, store ReviewStore, opts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		summarizer: sum,
		supervisor: sup,
		store:      store,
		parserOpts: opts,
		log:        log,
	}
}

// Process runs the full review pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)
	fail := func(phase, msg string) {
		job.AddError(msg)
		job.SetStatus(StatusFailed, phase)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	data := job.FileData()
	tree, err := parser.ParseBytes(data, job.Filename, w.parserOpts)
	if err != nil {
		log.Error("parse failed", "error", err)
		fail("parsing", err.Error())
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}

	// Phase 2: Stats
	job.SetStatus(StatusStats, "stats")
	text := tree.Text()
	stats := docstats.Collect(text, tree.Pages(), data)
	job.setStats(stats)
	if strings.TrimSpace(text) == "" {
		log.Warn("no extractable text", "pages", stats.PageCount)
		fail("stats", "no extractable text")
		return
	}
	hash := ContentHashHex([]byte(text))
	job.setContentHash(hash)

	if !job.Force {
		existing, found, err := w.store.FindByHash(ctx, job.UserID, hash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if found {
			log.Info("duplicate document, skipping", "existing_doc_id", existing)
			job.setDuplicateOf(existing)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}
	log.Info("document measured",
		"pages", stats.PageCount,
		"chars", stats.CharCount,
		"size_mb", stats.SizeMB,
	)

	// Phase 3: Summarise under supervision
	job.SetStatus(StatusSummarising, "summarising")
	result, err := w.supervisor.Supervise(ctx, w.summarizer, text, stats)
	if err != nil {
		log.Error("summarisation failed", "error", err)
		fail("summarising", fmt.Sprintf("summarise: %s", err))
		return
	}
	job.setResult(result)

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	verdict := pathstore.VerdictFor(result)
	err = w.store.PutReview(ctx, pathstore.Review{
		UserID:      job.UserID,
		DocID:       job.DocID,
		Filename:    job.Filename,
		Title:       tree.Title,
		ContentHash: hash,
		Verdict:     verdict,
		Result:      result,
		CreatedAt:   job.CreatedAt.UTC().Truncate(time.Second),
	})
	if err != nil {
		log.Error("review write failed", "error", err)
		fail("storing", fmt.Sprintf("store: %s", err))
		return
	}

	log.Info("review stored",
		"verdict", verdict,
		"retries", result.Validation.Retries,
		"length_score", result.Validation.LengthScore,
		"content_alignment", result.Validation.ContentAlignment,
	)
	if result.Validation.Passed {
		job.SetStatus(StatusCompleted, "done")
	} else {
		job.SetStatus(StatusNeedsReview, "done")
	}
}
