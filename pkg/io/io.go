// Package io defines the ingestion and export boundaries around the
// insight core. Collaborators hand the core an already-cleaned dataset
// and consume its structured output.
package io

import (
	"github.com/dashlens/dashlens/pkg/dataset"
	"github.com/dashlens/dashlens/pkg/insight"
)

// Reader is the interface for loading a cleaned dataset.
type Reader interface {
	// Read returns the complete dataset.
	Read() (*dataset.Dataset, error)

	// Close releases resources.
	Close() error
}

// Writer is the interface for exporting a presentation bundle.
type Writer interface {
	// Write serializes the bundle.
	Write(bundle *insight.Bundle) error

	// Close releases resources.
	Close() error
}
