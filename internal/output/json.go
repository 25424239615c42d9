package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masahif/listharvest/internal/extract"
)

// JSONWriter writes the table as an array of objects keyed by field name.
// Missing values are null and numbers stay numbers.
type JSONWriter struct {
	output       io.Writer
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ")
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer
func (w *JSONWriter) Write(table *extract.Table) error {
	records := table.Records
	if records == nil {
		records = []extract.Record{}
	}

	enc := json.NewEncoder(w.output)
	if w.indentPrefix != "" || w.indentString != "" {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
