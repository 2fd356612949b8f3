package output

import (
	"encoding/csv"
	"io"
)

// CSVWriter writes comma-separated rows behind a single header line.
// Every row is flushed as it is written.
type CSVWriter struct {
	w           *csv.Writer
	header      []string
	wroteHeader bool
}

// NewCSVWriter creates a CSV writer. A nil header is taken from the first
// record written.
func NewCSVWriter(w io.Writer, header []string) *CSVWriter {
	return &CSVWriter{
		w:      csv.NewWriter(w),
		header: header,
	}
}

func (w *CSVWriter) writeHeader(fallback []string) error {
	if w.wroteHeader {
		return nil
	}
	header := w.header
	if header == nil {
		header = fallback
	}
	if header == nil {
		return nil
	}
	w.wroteHeader = true
	return w.w.Write(header)
}

// Write writes a single record as one row.
func (w *CSVWriter) Write(rec Record) error {
	if err := w.writeHeader(rec.Header()); err != nil {
		return err
	}
	if err := w.w.Write(rec.Row()); err != nil {
		return err
	}
	return w.Flush()
}

// WriteAll writes multiple records.
func (w *CSVWriter) WriteAll(recs []Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header if nothing has been written yet, then flushes.
func (w *CSVWriter) Flush() error {
	if err := w.writeHeader(nil); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}
