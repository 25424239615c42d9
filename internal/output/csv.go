package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/masahif/listharvest/internal/extract"
)

// CSVWriter writes a header row followed by one row per record
type CSVWriter struct {
	output  io.Writer
	missing string
}

// NewCSVWriter creates a CSVWriter. Missing values are written as missing,
// which may be empty.
func NewCSVWriter(output io.Writer, missing string) *CSVWriter {
	return &CSVWriter{output: output, missing: missing}
}

// Write implements Writer
func (w *CSVWriter) Write(table *extract.Table) error {
	cw := csv.NewWriter(w.output)

	if err := cw.Write(table.Fields); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(table.Rows(w.missing)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
