package output

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/masahif/listharvest/internal/extract"
)

// MarkdownWriter writes the table as a GitHub-flavored markdown table
type MarkdownWriter struct {
	output  io.Writer
	missing string
}

// NewMarkdownWriter creates a MarkdownWriter
func NewMarkdownWriter(output io.Writer, missing string) *MarkdownWriter {
	return &MarkdownWriter{output: output, missing: missing}
}

// Write implements Writer
func (w *MarkdownWriter) Write(table *extract.Table) error {
	rows := table.Rows(w.missing)
	for _, row := range rows {
		for i, cell := range row {
			row[i] = escapeCell(cell)
		}
	}

	md := markdown.NewMarkdown(w.output)
	md.Table(markdown.TableSet{
		Header: table.Fields,
		Rows:   rows,
	})
	return md.Build()
}

// escapeCell keeps pipes and newlines from breaking the table layout
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
