package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// ScanResult holds the outcome of one pass over the content roots
type ScanResult struct {
	// Units parsed successfully, slugs not yet checked for collisions
	Units []*models.ContentUnit

	// Errors collected per file; the pass continues past individual failures
	// so one report names every offending file
	Errors []error
}

// ScannerService walks the configured content roots and parses every
// markdown file into a content unit
type ScannerService interface {
	// Scan parses all content files. A non-nil error means the walk itself
	// failed; per-file integrity errors are collected in the result.
	Scan(ctx context.Context) (*ScanResult, error)
}
