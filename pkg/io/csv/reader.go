// Package csv loads tabular data from CSV files into a typed dataset.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/dashlens/dashlens/pkg/dataset"
)

// Reader reads a CSV file into a dataset. Column kinds are inferred: a
// column whose every non-empty cell parses as a float becomes numeric,
// anything else categorical. Empty cells are missing values.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates whether the CSV has a header row. Without one,
// columns are named col0, col1, ...
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// NewReader opens a CSV file.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
		r.headers = headers
	}

	return r, nil
}

// Headers returns the column headers, if any.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read consumes the remaining records and returns the typed dataset.
func (r *Reader) Read() (*dataset.Dataset, error) {
	var records [][]string
	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if len(records) == 0 && len(r.headers) == 0 {
		return nil, errors.New("csv: empty file")
	}

	headers := r.headers
	if headers == nil {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("col%d", i)
		}
	}

	cols := make([]dataset.Column, len(headers))
	for j, name := range headers {
		cells := make([]string, len(records))
		numeric := true
		for i, record := range records {
			if j >= len(record) {
				continue
			}
			cells[i] = record[j]
			if cells[i] != "" {
				if _, err := strconv.ParseFloat(cells[i], 64); err != nil {
					numeric = false
				}
			}
		}

		if numeric {
			values := make([]float64, len(cells))
			for i, cell := range cells {
				if cell == "" {
					values[i] = math.NaN()
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					values[i] = math.NaN()
					continue
				}
				values[i] = v
			}
			cols[j] = dataset.NumericColumn(name, values)
		} else {
			cols[j] = dataset.CategoricalColumn(name, cells)
		}
	}

	return dataset.New(cols...)
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
