// Package jsonw writes presentation bundles as JSON.
package jsonw

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dashlens/dashlens/pkg/insight"
)

// Writer serializes bundles to an underlying stream.
type Writer struct {
	w      io.Writer
	file   *os.File
	indent bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithIndent enables pretty-printed output.
func WithIndent(indent bool) Option {
	return func(w *Writer) {
		w.indent = indent
	}
}

// NewWriter wraps an existing stream.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	jw := &Writer{w: w, indent: true}
	for _, opt := range opts {
		opt(jw)
	}
	return jw
}

// NewFileWriter creates the named file and writes to it.
func NewFileWriter(filename string, opts ...Option) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	jw := NewWriter(file, opts...)
	jw.file = file
	return jw, nil
}

// Write serializes the bundle.
func (w *Writer) Write(bundle *insight.Bundle) error {
	enc := json.NewEncoder(w.w)
	if w.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(bundle)
}

// Close releases the underlying file, if any.
func (w *Writer) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
