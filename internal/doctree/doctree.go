// Package doctree is the parsed, format-independent form of an uploaded
// document.
package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if the format is not paginated)
	Children []*DocNode // Subsections
}

// Page is one page record of extracted text.
type Page struct {
	Number int
	Text   string
}

// Text flattens node text depth first, separating blocks with a blank line.
func (t *DocTree) Text() string {
	var sb strings.Builder
	t.walk(func(n *DocNode) {
		if n.Text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(n.Text)
	})
	return sb.String()
}

// Pages groups node text by source page. Paginated nodes count as pages even
// when they carry no text, as scanned pages often do. Formats without
// pagination yield a single page holding all text; an empty document yields
// no pages.
func (t *DocTree) Pages() []Page {
	var pages []Page
	index := map[int]int{}
	var unpaged strings.Builder
	t.walk(func(n *DocNode) {
		if n.Page <= 0 {
			if n.Text == "" {
				return
			}
			if unpaged.Len() > 0 {
				unpaged.WriteString("\n\n")
			}
			unpaged.WriteString(n.Text)
			return
		}
		i, ok := index[n.Page]
		if !ok {
			index[n.Page] = len(pages)
			pages = append(pages, Page{Number: n.Page, Text: n.Text})
			return
		}
		if n.Text != "" {
			pages[i].Text = strings.TrimPrefix(pages[i].Text+"\n\n"+n.Text, "\n\n")
		}
	})
	if len(pages) == 0 && unpaged.Len() > 0 {
		return []Page{{Number: 1, Text: unpaged.String()}}
	}
	return pages
}

func (t *DocTree) walk(fn func(*DocNode)) {
	var visit func(nodes []*DocNode)
	visit = func(nodes []*DocNode) {
		for _, n := range nodes {
			fn(n)
			visit(n.Children)
		}
	}
	visit(t.Children)
}
