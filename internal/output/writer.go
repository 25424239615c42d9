// Package output renders a harvested table as CSV, JSON or Markdown.
package output

import (
	"fmt"
	"io"

	"github.com/masahif/listharvest/internal/extract"
)

// Writer writes a whole table to its destination
type Writer interface {
	Write(table *extract.Table) error
}

// Format names accepted by NewWriter
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// NewWriter returns the writer for format. missing is the text used for
// missing values in the text formats; JSON always uses null.
func NewWriter(format string, w io.Writer, missing string) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(w, missing), nil
	case FormatJSON:
		return NewJSONWriter(w, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(w, missing), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
