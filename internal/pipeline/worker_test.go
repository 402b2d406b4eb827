package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgallion1/docguard/internal/parser"
	"github.com/dgallion1/docguard/internal/pathstore"
	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/summary"
	"github.com/dgallion1/docguard/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admissionNote = "Patient admitted with pneumonia.\nTreated with amoxicillin by Dr Smith."

var goodSummary = summary.Summary{
	Primary:     "Assessment:\n- pneumonia treated with amoxicillin\n- Dr Smith",
	Diagnoses:   []string{"Pneumonia"},
	Medications: []string{"Amoxicillin"},
}

type memStore struct {
	mu      sync.Mutex
	reviews []pathstore.Review
	hashes  map[string]string
	findErr error
	putErr  error
}

func (m *memStore) FindByHash(_ context.Context, userID, hash string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return "", false, m.findErr
	}
	doc, ok := m.hashes[userID+"/"+hash]
	return doc, ok, nil
}

func (m *memStore) PutReview(_ context.Context, r pathstore.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.reviews = append(m.reviews, r)
	if m.hashes == nil {
		m.hashes = map[string]string{}
	}
	m.hashes[r.UserID+"/"+r.ContentHash] = r.DocID
	return nil
}

func lenientConfig() quality.Config {
	return quality.Config{
		BaselineMinChars:  10,
		MultiPassMinChars: 20,
		MinLengthRatio:    0.5,
		MinAlignment:      0.1,
		MinHeaders:        1,
		MinParagraphs:     1,
		MultiPassPages:    100,
		MultiPassChars:    200000,
		MultiPassSizeMB:   10,
	}
}

func newTestWorker(t *testing.T, sum supervisor.Summarizer, store ReviewStore) *Worker {
	t.Helper()
	v, err := quality.New(lenientConfig())
	require.NoError(t, err)
	sup, err := supervisor.New(v, supervisor.Options{MaxRetries: 1})
	require.NoError(t, err)
	return NewWorker(sum, sup, store, parser.Options{}, slog.New(slog.DiscardHandler))
}

func fixed(s summary.Summary) supervisor.SummarizerFunc {
	return func(context.Context, string) (summary.Summary, error) { return s, nil }
}

func TestWorker_AcceptedSummaryCompletes(t *testing.T) {
	store := &memStore{}
	w := newTestWorker(t, fixed(goodSummary), store)
	job := NewJob("u1", "", "note.txt", []byte(admissionNote))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status, "errors: %v", snap.Errors)
	require.NotNil(t, snap.Result)
	assert.True(t, snap.Result.Validation.Passed)
	assert.Equal(t, 0, snap.Result.Validation.Retries)
	assert.Equal(t, 1, snap.DocStats.PageCount)
	assert.Equal(t, len(admissionNote), snap.DocStats.CharCount)
	assert.NotEmpty(t, snap.ContentHash)

	require.Len(t, store.reviews, 1)
	r := store.reviews[0]
	assert.Equal(t, pathstore.VerdictAccepted, r.Verdict)
	assert.Equal(t, job.DocID, r.DocID)
	assert.Equal(t, "note", r.Title)
	assert.Nil(t, job.FileData())
}

func TestWorker_FailingSummaryNeedsReview(t *testing.T) {
	calls := 0
	sum := supervisor.SummarizerFunc(func(context.Context, string) (summary.Summary, error) {
		calls++
		return summary.Summary{Primary: "Nothing notable."}, nil
	})
	store := &memStore{}
	w := newTestWorker(t, sum, store)
	job := NewJob("u1", "d1", "note.txt", []byte(admissionNote))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusNeedsReview, snap.Status)
	assert.Equal(t, 2, calls, "initial attempt plus one retry")
	assert.Equal(t, 1, snap.Result.Validation.Retries)
	require.Len(t, store.reviews, 1)
	assert.Equal(t, pathstore.VerdictNeedsReview, store.reviews[0].Verdict)
}

func TestWorker_DuplicateSkipped(t *testing.T) {
	store := &memStore{}
	w := newTestWorker(t, fixed(goodSummary), store)

	first := NewJob("u1", "d1", "note.txt", []byte(admissionNote))
	w.Process(context.Background(), first)
	require.Equal(t, StatusCompleted, first.Snapshot().Status)

	second := NewJob("u1", "d2", "copy.txt", []byte(admissionNote))
	w.Process(context.Background(), second)
	snap := second.Snapshot()
	assert.Equal(t, StatusDupSkipped, snap.Status)
	assert.Equal(t, "d1", snap.DuplicateOf)

	forced := NewJob("u1", "d3", "copy.txt", []byte(admissionNote))
	forced.Force = true
	w.Process(context.Background(), forced)
	assert.Equal(t, StatusCompleted, forced.Snapshot().Status)
	assert.Len(t, store.reviews, 2)
}

func TestWorker_DedupErrorProceeds(t *testing.T) {
	store := &memStore{findErr: errors.New("pathstore down")}
	w := newTestWorker(t, fixed(goodSummary), store)
	job := NewJob("u1", "d1", "note.txt", []byte(admissionNote))

	w.Process(context.Background(), job)
	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
}

func TestWorker_Failures(t *testing.T) {
	boom := errors.New("model unavailable")
	tests := []struct {
		name     string
		filename string
		data     string
		sum      supervisor.Summarizer
		store    *memStore
		phase    string
	}{
		{"unsupported format", "scan.tiff", admissionNote, fixed(goodSummary), &memStore{}, "parsing"},
		{"no text", "blank.txt", "  \n\n  ", fixed(goodSummary), &memStore{}, "stats"},
		{"summarizer error", "note.txt", admissionNote, supervisor.SummarizerFunc(func(context.Context, string) (summary.Summary, error) {
			return summary.Summary{}, boom
		}), &memStore{}, "summarising"},
		{"store error", "note.txt", admissionNote, fixed(goodSummary), &memStore{putErr: errors.New("write refused")}, "storing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorker(t, tt.sum, tt.store)
			job := NewJob("u1", "d1", tt.filename, []byte(tt.data))

			w.Process(context.Background(), job)

			snap := job.Snapshot()
			assert.Equal(t, StatusFailed, snap.Status)
			assert.Equal(t, tt.phase, snap.Phase)
			assert.Len(t, snap.Errors, 1)
		})
	}
}
