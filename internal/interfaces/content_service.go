package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// ContentService exposes the content catalog: ordered listings, slug lookup,
// taxonomy aggregation and the scan/validate lifecycle. The catalog is
// file-driven; consumers never mutate units directly.
type ContentService interface {
	// Reconcile runs a full scan of the content roots and syncs the catalog:
	// new units added, changed units updated (with a revision appended),
	// units whose files disappeared removed. Integrity errors abort the
	// reconcile without partial writes.
	Reconcile(ctx context.Context) (*models.ScanReport, error)

	// Validate runs a read-only integrity pass over the content roots and
	// returns every error found: malformed front matter, missing required
	// fields, slug collisions. The catalog is not touched.
	Validate(ctx context.Context) []error

	// ValidateUniqueness reports a DuplicateSlugError when two distinct
	// source files resolve to the same slug.
	ValidateUniqueness(ctx context.Context) error

	// GetBySlug returns the unit for a slug, or ErrNotFound
	GetBySlug(ctx context.Context, slug string) (*models.ContentUnit, error)

	// ListPosts returns dated posts, newest first; equal dates order by slug
	ListPosts(ctx context.Context, opts *ListOptions) ([]*models.ContentUnit, error)

	// ListPages returns standalone pages ordered by menu weight, then slug
	ListPages(ctx context.Context) ([]*models.ContentUnit, error)

	// Taxonomy aggregations over posts
	Tags(ctx context.Context) ([]models.LabelCount, error)
	Categories(ctx context.Context) ([]models.LabelCount, error)

	// ListRevisions returns the revision history for a slug, newest first
	ListRevisions(ctx context.Context, slug string) ([]*models.Revision, error)

	// GetStats returns catalog counters
	GetStats(ctx context.Context) (*models.ContentStats, error)
}

// ListOptions for listing content units
type ListOptions struct {
	Kind     models.ContentKind // Filter by kind ("" matches all)
	Tag      string             // Filter by tag (exact match)
	Category string             // Filter by category (exact match)
	Limit    int
	Offset   int
}
