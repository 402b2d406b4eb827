// Package pipeline runs uploaded documents through parsing, statistics,
// supervised summarisation and review storage on a bounded worker pool.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/supervisor"
	"github.com/google/uuid"
)

// JobStatus represents the state of a review job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusStats       JobStatus = "stats"
	StatusSummarising JobStatus = "summarising"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusNeedsReview JobStatus = "needs_review"
	StatusFailed      JobStatus = "failed"
	StatusDupSkipped  JobStatus = "duplicate_skipped"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusNeedsReview, StatusFailed, StatusDupSkipped:
		return true
	}
	return false
}

// Job tracks a single document through the pipeline.
type Job struct {
	mu sync.Mutex

	ID     string
	DocID  string
	UserID string

	Status   JobStatus
	Phase    string
	Filename string
	Title    string
	Origin   string // "api" or "watch"
	Force    bool   // skip the duplicate check

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	fileData    []byte
	stats       *docstats.Stats
	result      *supervisor.Result
	duplicateOf string
	errors      []string
}

// NewJob creates a queued job. An empty docID is derived from the file bytes.
func NewJob(userID, docID, filename string, data []byte) *Job {
	if docID == "" {
		docID = ContentHashHex(data)[:16]
	}
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Origin:    "api",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// NewFileJob reads a file from disk into a queued job for the folder
// trigger. Files larger than maxBytes are rejected.
func NewFileJob(userID, path string, maxBytes int64) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s exceeds max size (%d bytes)", path, maxBytes)
	}
	job := NewJob(userID, "", filepath.Base(path), data)
	job.Origin = "watch"
	return job, nil
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Terminal() {
		j.fileData = nil
	}
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes. They are released once the job
// reaches a terminal status.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

func (j *Job) setContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

func (j *Job) setStats(s docstats.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stats = &s
}

func (j *Job) setResult(r supervisor.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &r
}

func (j *Job) setDuplicateOf(docID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.duplicateOf = docID
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string             `json:"job_id"`
	DocID       string             `json:"doc_id"`
	UserID      string             `json:"user_id"`
	Status      JobStatus          `json:"status"`
	Phase       string             `json:"phase"`
	Filename    string             `json:"filename"`
	Title       string             `json:"title,omitempty"`
	Origin      string             `json:"origin"`
	ContentHash string             `json:"content_hash,omitempty"`
	DuplicateOf string             `json:"duplicate_of,omitempty"`
	DocStats    *docstats.Stats    `json:"doc_stats,omitempty"`
	Result      *supervisor.Result `json:"result,omitempty"`
	Errors      []string           `json:"errors"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Origin:      j.Origin,
		ContentHash: j.ContentHash,
		DuplicateOf: j.duplicateOf,
		Errors:      append([]string{}, j.errors...),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.stats != nil {
		s := *j.stats
		snap.DocStats = &s
	}
	if j.result != nil {
		r := supervisor.Result{Validation: j.result.Validation, Summary: j.result.Summary.Clone()}
		snap.Result = &r
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
