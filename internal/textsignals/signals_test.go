package textsignals

import (
	"slices"
	"strings"
	"testing"

	"github.com/dgallion1/docguard/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripHeaders_RemovesBareLabels(t *testing.T) {
	in := "Diagnoses:\nHypertension noted on admission.\n\nPlan:\n\nFollow up in two weeks."
	want := "Hypertension noted on admission.\n\nFollow up in two weeks."
	assert.Equal(t, want, StripHeaders(in))
}

func TestStripHeaders_KeepsLabelWithProse(t *testing.T) {
	in := "Assessment: patient stable and improving.\nNo colon here."
	assert.Equal(t, in, StripHeaders(in))
}

func TestStripHeaders_NoOpWithoutHeadings(t *testing.T) {
	in := "First line.\n\n\n\nSecond line after a gap."
	assert.Equal(t, in, StripHeaders(in))
}

func TestStripHeaders_KeepsUnrelatedBlankRuns(t *testing.T) {
	in := "Intro line.\n\n\nBody line.\n\nPlan:\n\nFollow up."
	want := "Intro line.\n\n\nBody line.\n\nFollow up."
	assert.Equal(t, want, StripHeaders(in))
}

func TestStripHeaders_ConsecutiveHeadings(t *testing.T) {
	in := "Summary.\n\nHistory:\n\nPlan:\n\nRest."
	assert.Equal(t, "Summary.\n\nRest.", StripHeaders(in))
}

func TestStripHeaders_MarkdownStyleLabel(t *testing.T) {
	in := "## Medications:\n- lisinopril 10mg"
	assert.Equal(t, "- lisinopril 10mg", StripHeaders(in))
}

func TestTokenize_FiltersStopwordsAndNumbers(t *testing.T) {
	got := slices.Collect(Tokenize("The patient was given 500 mg of Metformin in 2021."))
	assert.Equal(t, []string{"patient", "given", "mg", "metformin"}, got)
}

func TestTokenize_IsRestartable(t *testing.T) {
	seq := Tokenize("Chronic kidney disease")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"chronic", "kidney", "disease"}, first)
}

func TestTokenize_EarlyStop(t *testing.T) {
	n := 0
	for range Tokenize("alpha beta gamma delta") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestTokenize_OnlyStopwords(t *testing.T) {
	assert.Empty(t, slices.Collect(Tokenize("the and of")))
}

func TestCountParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t\n", 0},
		{"single", "one line\nanother line", 1},
		{"three", "a\n\nb\n   \nc", 3},
		{"leading and trailing blanks", "\n\na\n\n\nb\n\n", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CountParagraphs(tc.in))
		})
	}
}

func TestCountHeaders(t *testing.T) {
	in := "History:\ntext\nMedications:\n- a\nPlan: continue therapy\nFollow-up:"
	assert.Equal(t, 3, CountHeaders(in))
}

func TestHasStructuredList_NumberedList(t *testing.T) {
	assert.True(t, HasStructuredList("1. First\n2. Second", summary.Summary{}))
}

func TestHasStructuredList_Bullets(t *testing.T) {
	assert.True(t, HasStructuredList("Intro\n- one\n* two", summary.Summary{}))
}

func TestHasStructuredList_SingleItemIsNotAList(t *testing.T) {
	assert.False(t, HasStructuredList("- only one item\nplain prose", summary.Summary{}))
}

func TestHasStructuredList_EntitiesCount(t *testing.T) {
	s := summary.Summary{Providers: []string{"Dr. Patel"}}
	assert.True(t, HasStructuredList("plain prose", s))
}

func TestLoadVocabulary_Override(t *testing.T) {
	v, err := LoadVocabulary(strings.NewReader(`
heading_pattern: '^[A-Z]+:$'
list_item_pattern: '^> '
stopwords: [Foo]
`))
	require.NoError(t, err)
	assert.True(t, v.IsHeading("PLAN:"))
	assert.False(t, v.IsHeading("Plan:"))
	assert.Equal(t, []string{"bar"}, slices.Collect(v.Tokenize("foo bar")))
	assert.True(t, v.HasStructuredList("> a\n> b", summary.Summary{}))
}

func TestLoadVocabulary_Invalid(t *testing.T) {
	_, err := LoadVocabulary(strings.NewReader("heading_pattern: '('\nlist_item_pattern: 'x'"))
	assert.Error(t, err)

	_, err = LoadVocabulary(strings.NewReader("stopwords: [a]"))
	assert.Error(t, err)
}
