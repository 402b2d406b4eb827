package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docguard/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	title := baseTitle(filename)
	b := newSectionBuilder(title)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			b.heading(inlineText(h, src), h.Level)
			continue
		}
		b.paragraph(blockText(n, src))
	}
	return b.tree(title), nil
}

// blockText renders a block node back to plain text. List items keep a
// bullet or number marker so list structure survives flattening.
func blockText(n ast.Node, src []byte) string {
	if list, ok := n.(*ast.List); ok {
		var lines []string
		num := list.Start
		for item := list.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "- "
			if list.IsOrdered() {
				marker = strconv.Itoa(num) + ". "
				num++
			}
			lines = append(lines, marker+blockText(item, src))
		}
		return strings.Join(lines, "\n")
	}

	var buf bytes.Buffer
	if !n.HasChildren() {
		// Code blocks and the like carry raw lines only.
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeBlock {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(blockText(c, src))
			continue
		}
		buf.WriteString(inlineText(c, src))
	}
	return strings.TrimSpace(buf.String())
}

func inlineText(n ast.Node, src []byte) string {
	if t, ok := n.(*ast.Text); ok {
		s := string(t.Value(src))
		if t.HardLineBreak() || t.SoftLineBreak() {
			s += "\n"
		}
		return s
	}
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		buf.WriteString(inlineText(c, src))
	}
	return buf.String()
}
