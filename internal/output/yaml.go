package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter buffers records and writes them as one YAML sequence on Flush.
type YAMLWriter struct {
	w       *bufio.Writer
	items   []Record
	flushed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]Record, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(recs []Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Flush writes the buffered records. Later calls are no-ops.
func (w *YAMLWriter) Flush() error {
	if w.flushed {
		return nil
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.flushed = true
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
