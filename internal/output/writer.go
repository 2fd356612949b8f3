// Package output serializes extracted records.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents output format types.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML}

// Record is a flat row with a fixed set of named columns. Structured formats
// marshal the record value itself, so it should carry json/yaml tags.
type Record interface {
	Header() []string
	Row() []string
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single record.
	Write(rec Record) error

	// WriteAll outputs multiple records.
	WriteAll(recs []Record) error

	// Flush ensures all data is written.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	header []string
}

// WithPretty enables pretty-printing for JSON.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithHeader sets the CSV header so it is written even when no record is.
func WithHeader(columns []string) WriterOption {
	return func(c *writerConfig) {
		c.header = columns
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV:
		return NewCSVWriter(w, cfg.header), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatFromPath infers a format from the file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Create truncates or creates path and returns a writer for it. Closing the
// writer flushes it and closes the file.
func Create(path string, format Format, opts ...WriterOption) (Writer, error) {
	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w, err := NewWriter(f, format, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileWriter{Writer: w, file: f}, nil
}

type fileWriter struct {
	Writer
	file *os.File
}

func (w *fileWriter) Close() error {
	return errors.Join(w.Writer.Close(), w.file.Close())
}
