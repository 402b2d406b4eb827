package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docguard/internal/chunker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string, call int) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	call := len(f.prompts)
	f.mu.Unlock()
	return f.reply(prompt, call)
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestSummarise_SingleChunk(t *testing.T) {
	fc := &fakeCompleter{reply: func(string, int) (string, error) {
		return `{"summary":"Plan:\n- rest","diagnoses":"Flu"}`, nil
	}}
	stats := NewLLMStats(time.Hour)
	s := NewSummarizer(fc, Options{Stats: stats, sleep: noSleep})

	got, err := s.Summarise(context.Background(), "Patient has flu. Advised rest.")
	require.NoError(t, err)
	assert.Equal(t, "Plan:\n- rest", got.Primary)
	assert.Equal(t, []string{"Flu"}, got.Diagnoses)
	require.Len(t, fc.prompts, 1)
	assert.NotContains(t, fc.prompts[0], "part 1")
	assert.Equal(t, 1, stats.Snapshot().Count)
}

func TestSummarise_BlankTextSkipsModel(t *testing.T) {
	fc := &fakeCompleter{reply: func(string, int) (string, error) { return "", errors.New("unexpected call") }}
	got, err := NewSummarizer(fc, Options{}).Summarise(context.Background(), " \n ")
	require.NoError(t, err)
	assert.Empty(t, got.Text())
	assert.Empty(t, fc.prompts)
}

func TestSummarise_ChunksCombinedInOrder(t *testing.T) {
	first := "Alpha admitted with chest pain and started on aspirin daily today."
	second := "Beta follow up arranged with cardiology clinic next month for review."
	fc := &fakeCompleter{reply: func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "part 1 of 2") {
			return `{"summary":"first","sections":{"plan":"p1"},"medications":"Aspirin","providers":"Dr. Lee"}`, nil
		}
		return `{"summary":"second","sections":{"plan":"p2"},"medications":"Aspirin\nStatin"}`, nil
	}}
	s := NewSummarizer(fc, Options{Chunk: chunker.Config{ChunkSize: 20}, sleep: noSleep})

	got, err := s.Summarise(context.Background(), first+"\n\n"+second)
	require.NoError(t, err)
	assert.Len(t, fc.prompts, 2)
	assert.Equal(t, "first\n\nsecond", got.Primary)
	assert.Equal(t, "p1\n\np2", got.Sections["plan"])
	assert.Equal(t, []string{"Aspirin", "Statin"}, got.Medications)
	assert.Equal(t, []string{"Dr. Lee"}, got.Providers)
}

func TestSummarise_RetriesTransientErrors(t *testing.T) {
	fc := &fakeCompleter{reply: func(_ string, call int) (string, error) {
		if call < 3 {
			return "", &RetryableError{StatusCode: 529, Message: "overloaded"}
		}
		return `{"summary":"ok"}`, nil
	}}
	stats := NewLLMStats(time.Hour)
	s := NewSummarizer(fc, Options{MaxAttempts: 3, Stats: stats, sleep: noSleep})

	got, err := s.Summarise(context.Background(), "Some text.")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Primary)
	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 2, snap.Failures)
}

func TestSummarise_GivesUpAfterMaxAttempts(t *testing.T) {
	fc := &fakeCompleter{reply: func(string, int) (string, error) {
		return "", &RetryableError{StatusCode: 500}
	}}
	_, err := NewSummarizer(fc, Options{MaxAttempts: 2, sleep: noSleep}).Summarise(context.Background(), "Some text.")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Len(t, fc.prompts, 2)
}

func TestSummarise_PermanentErrorNotRetried(t *testing.T) {
	boom := errors.New("invalid request")
	fc := &fakeCompleter{reply: func(string, int) (string, error) { return "", boom }}
	_, err := NewSummarizer(fc, Options{sleep: noSleep}).Summarise(context.Background(), "Some text.")
	require.ErrorIs(t, err, boom)
	assert.Len(t, fc.prompts, 1)
}

func TestSummarise_InvalidReplyIsError(t *testing.T) {
	fc := &fakeCompleter{reply: func(string, int) (string, error) { return `{"diagnoses":"x"}`, nil }}
	_, err := NewSummarizer(fc, Options{sleep: noSleep}).Summarise(context.Background(), "Some text.")
	assert.ErrorContains(t, err, "schema")
}
