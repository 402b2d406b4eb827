package parser

import (
	"strings"

	"github.com/dgallion1/docguard/internal/doctree"
)

// sectionBuilder nests text under headings by level. Markdown, HTML and DOCX
// all share it.
type sectionBuilder struct {
	root  *doctree.DocNode
	stack []sectionLevel
	text  strings.Builder
}

type sectionLevel struct {
	node  *doctree.DocNode
	level int
}

func newSectionBuilder(title string) *sectionBuilder {
	root := &doctree.DocNode{Title: title}
	return &sectionBuilder{root: root, stack: []sectionLevel{{node: root}}}
}

// heading opens a section at level (1 = top), closing any deeper or equal ones.
func (b *sectionBuilder) heading(title string, level int) {
	b.flush()
	node := &doctree.DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, sectionLevel{node: node, level: level})
}

// paragraph appends a text block to the open section.
func (b *sectionBuilder) paragraph(t string) {
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *sectionBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the document. Text that appeared before any heading becomes
// a leading untitled section.
func (b *sectionBuilder) tree(title string) *doctree.DocTree {
	b.flush()
	tree := &doctree.DocTree{Title: title, Children: b.root.Children}
	if b.root.Text != "" {
		lead := &doctree.DocNode{Text: b.root.Text}
		tree.Children = append([]*doctree.DocNode{lead}, tree.Children...)
	}
	return tree
}
