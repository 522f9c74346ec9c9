package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// CSVWriter outputs the aggregated facts as CSV rows.
// This format is designed for spreadsheets and downstream enrichment
// tooling that consumes one fact per row.
//
// Design decision: We use the standard library encoding/csv because CSV
// output here is a flat fact table with no typed-struct mapping needs;
// csv.Writer handles quoting and escaping correctly.
type CSVWriter struct {
	baseWriter

	// includeHeader controls whether the column header row is written.
	includeHeader bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithoutHeader suppresses the column header row.
// Useful when appending multiple reports into one file.
func WithoutHeader() CSVWriterOption {
	return func(w *CSVWriter) {
		w.includeHeader = false
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter:    newBaseWriter(output),
		includeHeader: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// csvHeader is the column layout for fact rows.
var csvHeader = []string{"domain", "type", "value", "confidence", "source_url"}

// Write outputs one CSV row per aggregated fact.
// Byte counts are approximate: csv.Writer buffers internally, so we count
// the rendered field lengths instead of wrapping the output writer.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	cw := csv.NewWriter(w.output)

	var total int
	writeRow := func(row []string) error {
		for _, field := range row {
			total += len(field) + 1
		}
		return cw.Write(row)
	}

	if w.includeHeader {
		if err := writeRow(csvHeader); err != nil {
			return total, err
		}
	}

	for _, f := range sortedFacts(report) {
		row := []string{
			report.Domain,
			f.Type.String(),
			f.Value,
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			f.SourceURL,
		}
		if err := writeRow(row); err != nil {
			return total, err
		}
	}

	cw.Flush()
	return total, cw.Error()
}
