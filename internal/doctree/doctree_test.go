package doctree

import "testing"

func TestText_FlattensDepthFirst(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{
		{Title: "A", Text: "alpha", Children: []*DocNode{{Text: "child"}}},
		{Title: "B"},
		{Text: "beta"},
	}}
	if got := tree.Text(); got != "alpha\n\nchild\n\nbeta" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestPages_GroupsByPageNumber(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{
		{Text: "p1a", Page: 1},
		{Text: "p2", Page: 2},
		{Text: "p1b", Page: 1},
	}}
	pages := tree.Pages()
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Number != 1 || pages[0].Text != "p1a\n\np1b" {
		t.Errorf("unexpected first page %+v", pages[0])
	}
}

func TestPages_UnpaginatedIsOnePage(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{{Text: "a"}, {Text: "b"}}}
	pages := tree.Pages()
	if len(pages) != 1 || pages[0].Text != "a\n\nb" {
		t.Errorf("expected single page, got %+v", pages)
	}
}

func TestPages_Empty(t *testing.T) {
	tree := &DocTree{}
	if pages := tree.Pages(); len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}

func TestPages_BlankScannedPagesCount(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{
		{Page: 1},
		{Text: "recovered text", Page: 2},
		{Page: 3},
	}}
	pages := tree.Pages()
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].Text != "" || pages[1].Text != "recovered text" {
		t.Errorf("unexpected pages %+v", pages)
	}
}
