package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docguard/internal/docstats"
	"github.com/dgallion1/docguard/internal/quality"
	"github.com/dgallion1/docguard/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns its attempts in order and counts calls.
type scripted struct {
	attempts []summary.Summary
	errAt    int // 1-based call that fails; 0 never
	err      error
	calls    int
	texts    []string
}

func (s *scripted) Summarise(_ context.Context, text string) (summary.Summary, error) {
	s.calls++
	s.texts = append(s.texts, text)
	if s.errAt == s.calls {
		return summary.Summary{}, s.err
	}
	if len(s.attempts) == 0 {
		return summary.Summary{}, nil
	}
	i := min(s.calls-1, len(s.attempts)-1)
	return s.attempts[i], nil
}

var terms = []string{
	"hypertension", "lisinopril", "cardiology", "echocardiogram", "arrhythmia",
	"diabetes", "metformin", "endocrinology", "glucose", "neuropathy",
	"asthma", "albuterol", "pulmonology", "spirometry", "wheezing",
	"arthritis", "ibuprofen", "rheumatology", "radiograph", "stiffness",
	"anemia", "ferritin", "hematology", "transfusion", "fatigue",
	"migraine", "sumatriptan", "neurology", "photophobia", "aura",
	"insomnia", "melatonin", "psychiatry", "polysomnography", "anxiety",
	"eczema", "hydrocortisone", "dermatology", "pruritus", "biopsy",
}

func sourceText() string {
	var b strings.Builder
	for i := 0; i < len(terms); i += 5 {
		b.WriteString("The " + strings.Join(terms[i:i+5], " ") + " of the record.\n")
	}
	return b.String()
}

// headed renders the given terms under three headings as bulleted lines.
func headed(ts []string) string {
	var b strings.Builder
	for _, h := range []string{"History:", "Findings:", "Plan:"} {
		b.WriteString(h + "\n")
		for i := 0; i < len(ts); i += 5 {
			b.WriteString("- " + strings.Join(ts[i:min(i+5, len(ts))], " ") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newSupervisor(t *testing.T, maxRetries int) (*Supervisor, *quality.Validator) {
	t.Helper()
	v, err := quality.New(quality.DefaultConfig())
	require.NoError(t, err)
	s, err := New(v, Options{MaxRetries: maxRetries})
	require.NoError(t, err)
	return s, v
}

func TestRetryAndMerge_InitialPassShortCircuits(t *testing.T) {
	s, v := newSupervisor(t, 2)
	src := sourceText()
	stats := docstats.Stats{PageCount: 1, CharCount: len(src)}
	initial := summary.Summary{Primary: headed(terms), Diagnoses: []string{"hypertension"}}
	report := v.Validate(src, initial, stats, 0)
	require.True(t, report.Passed)

	stub := &scripted{}
	res, err := s.RetryAndMerge(context.Background(), stub, src, stats, initial, report)

	require.NoError(t, err)
	assert.Equal(t, 0, stub.calls)
	assert.Equal(t, 0, res.Validation.Retries)
	assert.Equal(t, initial, res.Summary)
	assert.Equal(t, report, res.Validation)
}

func TestSupervise_LargeDocumentPassesOnSecondRetry(t *testing.T) {
	s, _ := newSupervisor(t, 2)
	src := sourceText()
	stats := docstats.Stats{PageCount: 250, CharCount: len(src), SizeMB: 11.4}

	stub := &scripted{attempts: []summary.Summary{
		{Primary: "Hypertension noted.", Diagnoses: []string{"hypertension"}},
		{Primary: headed(terms[:20]), Diagnoses: []string{"hypertension", "diabetes"}, Medications: []string{"lisinopril"}},
		{Primary: headed(terms), Medications: []string{"metformin", "lisinopril"}, Providers: []string{"Dr Alvarez"}},
	}}

	res, err := s.Supervise(context.Background(), stub, src, stats)

	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
	assert.True(t, res.Validation.Passed)
	assert.True(t, res.Validation.Checks.MultiPassRequired)
	assert.Equal(t, 2, res.Validation.Retries)
	assert.GreaterOrEqual(t, res.Validation.LengthScore, 0.75)
	assert.GreaterOrEqual(t, res.Validation.ContentAlignment, 0.8)

	assert.Equal(t, headed(terms), res.Summary.Primary)
	assert.Equal(t, []string{"hypertension", "diabetes"}, res.Summary.Diagnoses)
	assert.Equal(t, []string{"lisinopril", "metformin"}, res.Summary.Medications)
	assert.Equal(t, []string{"Dr Alvarez"}, res.Summary.Providers)
	for _, text := range stub.texts {
		assert.Equal(t, src, text)
	}
}

func TestSupervise_InitialFailureReported(t *testing.T) {
	_, v := newSupervisor(t, 2)
	src := sourceText()
	stats := docstats.Stats{PageCount: 250, SizeMB: 11.4}
	short := summary.Summary{Primary: "Hypertension noted."}

	assert.False(t, v.Validate(src, short, stats, 0).Passed)
	assert.True(t, v.Validate(src, short, stats, 0).Checks.MultiPassRequired)
}

func TestSupervise_SmallDocumentPassesFirstTime(t *testing.T) {
	s, _ := newSupervisor(t, 2)
	src := sourceText()
	stats := docstats.Stats{PageCount: 1, CharCount: len(src), SizeMB: 0.01}
	stub := &scripted{attempts: []summary.Summary{{Primary: headed(terms)}}}

	res, err := s.Supervise(context.Background(), stub, src, stats)

	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.True(t, res.Validation.Passed)
	assert.Equal(t, 0, res.Validation.Retries)
}

func TestRetryAndMerge_ExhaustsBudget(t *testing.T) {
	s, v := newSupervisor(t, 2)
	src := sourceText()
	stats := docstats.Stats{PageCount: 1}
	initial := summary.Summary{Primary: "too short", Diagnoses: []string{"a"}}
	report := v.Validate(src, initial, stats, 0)

	stub := &scripted{attempts: []summary.Summary{
		{Primary: "still short", Diagnoses: []string{"b", "a"}},
		{Primary: "short again", Diagnoses: []string{"c"}},
	}}
	res, err := s.RetryAndMerge(context.Background(), stub, src, stats, initial, report)

	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.False(t, res.Validation.Passed)
	assert.Equal(t, 2, res.Validation.Retries)
	assert.Equal(t, "short again", res.Summary.Primary)
	assert.Equal(t, []string{"a", "b", "c"}, res.Summary.Diagnoses)
}

func TestRetryAndMerge_StopsOnFirstPass(t *testing.T) {
	s, v := newSupervisor(t, 5)
	src := sourceText()
	stats := docstats.Stats{PageCount: 1}
	initial := summary.Summary{Primary: "short"}
	report := v.Validate(src, initial, stats, 0)

	stub := &scripted{attempts: []summary.Summary{{Primary: headed(terms)}}}
	res, err := s.RetryAndMerge(context.Background(), stub, src, stats, initial, report)

	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, res.Validation.Retries)
	assert.True(t, res.Validation.Passed)
}

func TestRetryAndMerge_ZeroBudgetReturnsInitial(t *testing.T) {
	s, v := newSupervisor(t, 0)
	src := sourceText()
	initial := summary.Summary{Primary: "short"}
	report := v.Validate(src, initial, docstats.Stats{}, 0)

	stub := &scripted{}
	res, err := s.RetryAndMerge(context.Background(), stub, src, docstats.Stats{}, initial, report)

	require.NoError(t, err)
	assert.Equal(t, 0, stub.calls)
	assert.Equal(t, report, res.Validation)
	assert.Equal(t, initial, res.Summary)
}

func TestRetryAndMerge_PropagatesSummarizerError(t *testing.T) {
	s, v := newSupervisor(t, 3)
	src := sourceText()
	initial := summary.Summary{Primary: "short"}
	report := v.Validate(src, initial, docstats.Stats{}, 0)

	boom := errors.New("model unavailable")
	stub := &scripted{attempts: []summary.Summary{{Primary: "short"}}, errAt: 2, err: boom}
	_, err := s.RetryAndMerge(context.Background(), stub, src, docstats.Stats{}, initial, report)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "retry 2")
	assert.Equal(t, 2, stub.calls)
}

func TestSupervise_InitialSummarizerError(t *testing.T) {
	s, _ := newSupervisor(t, 2)
	boom := errors.New("timeout")
	_, err := s.Supervise(context.Background(), &scripted{errAt: 1, err: boom}, "text", docstats.Stats{})
	assert.ErrorIs(t, err, boom)
}

func TestRetryAndMerge_DoesNotMutateInputs(t *testing.T) {
	s, v := newSupervisor(t, 1)
	src := sourceText()
	initial := summary.Summary{Primary: "short", Providers: []string{"Dr A"}}
	report := v.Validate(src, initial, docstats.Stats{}, 0)
	attempt := summary.Summary{Primary: "other", Providers: []string{"Dr B"}}

	_, err := s.RetryAndMerge(context.Background(), &scripted{attempts: []summary.Summary{attempt}}, src, docstats.Stats{}, initial, report)

	require.NoError(t, err)
	assert.Equal(t, []string{"Dr A"}, initial.Providers)
	assert.Equal(t, []string{"Dr B"}, attempt.Providers)
}

func TestNew_RejectsNegativeRetries(t *testing.T) {
	v, err := quality.New(quality.DefaultConfig())
	require.NoError(t, err)

	_, err = New(v, Options{MaxRetries: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMerge(t *testing.T) {
	best := summary.Summary{
		Primary:   "old",
		Sections:  map[string]string{"a": "old section"},
		Diagnoses: []string{"x", "y"},
	}
	next := summary.Summary{
		Primary:     "new",
		Diagnoses:   []string{"y", "z"},
		Medications: []string{"m"},
	}
	got := Merge(best, next)

	assert.Equal(t, "new", got.Primary)
	assert.Nil(t, got.Sections)
	assert.Equal(t, []string{"x", "y", "z"}, got.Diagnoses)
	assert.Equal(t, []string{"m"}, got.Medications)
	assert.Nil(t, got.Providers)
}

func TestSummarizerFunc(t *testing.T) {
	var f Summarizer = SummarizerFunc(func(_ context.Context, text string) (summary.Summary, error) {
		return summary.Summary{Primary: strings.ToUpper(text)}, nil
	})
	got, err := f.Summarise(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", got.Primary)
}
