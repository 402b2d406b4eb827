package llm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/docguard/internal/chunker"
	"github.com/dgallion1/docguard/internal/summary"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Completer sends a system prompt and a user prompt to a model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Options tune a Summarizer. Zero values select defaults.
type Options struct {
	Chunk       chunker.Config
	Concurrency int          // Parallel chunk requests per document.
	MaxAttempts int          // Requests per chunk, counting the first.
	RatePerSec  float64      // Request rate across all documents; 0 means unlimited.
	Burst       int          // Rate limiter burst.
	Stats       *LLMStats    // Optional latency recorder.
	Logger      *slog.Logger // Defaults to a discarding logger.

	sleep func(context.Context, time.Duration) error
}

// Summarizer turns document text into a summary.Summary. Long documents
// are split into chunks that are summarised in parallel and stitched back
// together in document order.
type Summarizer struct {
	client  Completer
	opts    Options
	limiter *rate.Limiter
}

func NewSummarizer(client Completer, opts Options) *Summarizer {
	if opts.Chunk.ChunkSize <= 0 {
		opts.Chunk = chunker.DefaultConfig()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.sleep == nil {
		opts.sleep = sleepCtx
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), max(opts.Burst, 1))
	}
	return &Summarizer{client: client, opts: opts, limiter: limiter}
}

// Summarise produces a summary of text. Blank text yields an empty summary
// without contacting the model.
func (s *Summarizer) Summarise(ctx context.Context, text string) (summary.Summary, error) {
	chunks := chunker.Split(text, s.opts.Chunk)
	if len(chunks) == 0 {
		return summary.Summary{}, nil
	}

	parts := make([]summary.Summary, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			part, err := s.summariseChunk(gctx, buildPrompt(chunk, i+1, len(chunks)))
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary.Summary{}, err
	}
	if len(chunks) > 1 {
		s.opts.Logger.Debug("combined chunk summaries", "chunks", len(chunks))
	}
	return combine(parts), nil
}

func (s *Summarizer) summariseChunk(ctx context.Context, prompt string) (summary.Summary, error) {
	var lastErr error
	for attempt := range s.opts.MaxAttempts {
		if attempt > 0 {
			wait := Backoff(attempt - 1)
			s.opts.Logger.Warn("retrying summary request", "attempt", attempt+1, "wait", wait, "error", lastErr)
			if err := s.opts.sleep(ctx, wait); err != nil {
				return summary.Summary{}, err
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return summary.Summary{}, err
		}

		start := time.Now()
		raw, err := s.client.Complete(ctx, systemPrompt, prompt)
		elapsed := time.Since(start)
		if err != nil {
			s.record(elapsed, true)
			if !IsRetryable(err) {
				return summary.Summary{}, err
			}
			lastErr = err
			continue
		}
		s.record(elapsed, false)
		return parseSummary(raw)
	}
	return summary.Summary{}, fmt.Errorf("giving up after %d attempts: %w", s.opts.MaxAttempts, lastErr)
}

func (s *Summarizer) record(d time.Duration, failed bool) {
	if s.opts.Stats == nil {
		return
	}
	if failed {
		s.opts.Stats.RecordFailure(d)
		return
	}
	s.opts.Stats.Record(d)
}

// combine stitches per-chunk summaries in order. Narratives and same-label
// sections are concatenated; entity lists keep the first occurrence of each
// item.
func combine(parts []summary.Summary) summary.Summary {
	if len(parts) == 1 {
		return parts[0]
	}
	var out summary.Summary
	var primaries []string
	for _, p := range parts {
		if t := strings.TrimSpace(p.Primary); t != "" {
			primaries = append(primaries, t)
		}
		for label, body := range p.Sections {
			if out.Sections == nil {
				out.Sections = make(map[string]string)
			}
			if prev, ok := out.Sections[label]; ok {
				body = prev + "\n\n" + body
			}
			out.Sections[label] = body
		}
		for _, kind := range summary.EntityKinds {
			out = out.WithEntities(kind, appendUnique(out.Entities(kind), p.Entities(kind)))
		}
	}
	out.Primary = strings.Join(primaries, "\n\n")
	return out
}

func appendUnique(dst, items []string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
