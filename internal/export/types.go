// Package export generates downloadable marketplace reports: CSV application
// summaries and PDF earnings statements, optionally persisted to object storage.
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrStorageUnavailable indicates object storage is not configured.
	ErrStorageUnavailable = errors.New("export storage unavailable")
)
