package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docguard/internal/doctree"
)

// TextParser handles plain text, typically OCR output. Form feeds mark page
// breaks; blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tree := &doctree.DocTree{Title: baseTitle(filename)}

	raw := string(data)
	paged := strings.Contains(raw, "\f")
	for i, page := range strings.Split(raw, "\f") {
		pageNum := 0
		if paged {
			pageNum = i + 1
		}
		paras, err := paragraphs(page)
		if err != nil {
			return nil, err
		}
		if len(paras) == 0 && paged {
			tree.Children = append(tree.Children, &doctree.DocNode{Page: pageNum})
		}
		for _, para := range paras {
			tree.Children = append(tree.Children, &doctree.DocNode{Text: para, Page: pageNum})
		}
	}
	return tree, nil
}

func paragraphs(text string) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out, scanner.Err()
}
