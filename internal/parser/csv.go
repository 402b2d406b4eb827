package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docguard/internal/doctree"
)

// CSVParser handles tabular exports such as lab result listings. Each row
// becomes one "header: value" line; rows are grouped into sections.
type CSVParser struct{}

const csvRowsPerSection = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	tree := &doctree.DocTree{Title: baseTitle(filename)}
	if len(records) < 2 {
		return tree, nil
	}

	headers, rows := records[0], records[1:]
	for start := 0; start < len(rows); start += csvRowsPerSection {
		end := min(start+csvRowsPerSection, len(rows))
		var text strings.Builder
		for _, row := range rows[start:end] {
			cells := make([]string, 0, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cell = headers[j] + ": " + cell
				}
				cells = append(cells, cell)
			}
			text.WriteString(strings.Join(cells, ", "))
			text.WriteString("\n")
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Rows %d-%d", start+2, end+1),
			Text:  strings.TrimSpace(text.String()),
		})
	}
	return tree, nil
}
