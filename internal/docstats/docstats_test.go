package docstats

import (
	"bytes"
	"strings"
	"testing"
)

func TestCollect_EmptyInputs(t *testing.T) {
	s := Collect[struct{}]("", nil, nil)
	if s.PageCount != 0 || s.CharCount != 0 || s.SizeMB != 0.0 {
		t.Fatalf("expected zeroed stats, got %+v", s)
	}
}

func TestCollect_CountsPagesAndChars(t *testing.T) {
	s := Collect("hello world", []int{1, 2, 3}, []byte("abc"))
	if s.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", s.PageCount)
	}
	if s.CharCount != 11 {
		t.Errorf("expected 11 chars, got %d", s.CharCount)
	}
}

func TestCollect_SizeInMegabytes(t *testing.T) {
	file := bytes.Repeat([]byte{'x'}, 3*1024*1024/2)
	s := Collect("", []string{}, file)
	if s.SizeMB != 1.5 {
		t.Errorf("expected 1.5 MB, got %f", s.SizeMB)
	}
}

func TestCollect_EmptyFileBytes(t *testing.T) {
	s := Collect("text", []string{"p1"}, []byte{})
	if s.SizeMB != 0 {
		t.Errorf("expected 0 MB for empty file, got %f", s.SizeMB)
	}
}

func TestCollect_CountsCharactersNotBytes(t *testing.T) {
	s := Collect(strings.Repeat("é", 100), []int(nil), nil)
	if s.CharCount != 100 {
		t.Errorf("expected 100 chars, got %d", s.CharCount)
	}
	s = Collect("“Dr Müller”", []int{1}, nil)
	if s.CharCount != 11 {
		t.Errorf("expected 11 chars, got %d", s.CharCount)
	}
}

func TestFromCounts(t *testing.T) {
	s := FromCounts("naïve", 250, 3*1024*1024)
	if s.PageCount != 250 || s.CharCount != 5 || s.SizeMB != 3.0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if z := FromCounts("", 0, 0); z != (Stats{}) {
		t.Fatalf("expected zeroed stats, got %+v", z)
	}
}
