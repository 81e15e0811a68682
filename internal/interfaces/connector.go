package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// Connector defines the common interface for all content source implementations
type Connector interface {
	// TestConnection verifies if the connector configuration is valid and working
	TestConnection(ctx context.Context) error
	// Type returns the connector type
	Type() string
}

// GitHubConnector pulls markdown content from a repository tree
type GitHubConnector interface {
	Connector

	// FetchContent downloads the configured content path at the configured
	// ref into destDir, preserving the directory layout. Only markdown files
	// and unit-relative assets (images) are written.
	FetchContent(ctx context.Context, destDir string) (*models.SyncReport, error)
}
