package interfaces

import (
	"github.com/ternarybob/folio/internal/models"
)

// ContentStorage - interface for content unit persistence
type ContentStorage interface {
	// CRUD operations
	SaveUnit(unit *models.ContentUnit) error
	SaveUnits(units []*models.ContentUnit) error
	GetUnit(slug string) (*models.ContentUnit, error)
	DeleteUnit(slug string) error

	// List operations
	ListUnits(opts *ListOptions) ([]*models.ContentUnit, error)
	ListSlugs() ([]string, error)

	// Stats operations
	CountUnits() (int, error)
	CountByKind(kind models.ContentKind) (int, error)

	// Bulk operations
	ClearAll() error
}

// RevisionStorage - interface for revision history persistence
type RevisionStorage interface {
	SaveRevision(rev *models.Revision) error
	GetRevision(id string) (*models.Revision, error)

	// ListRevisions returns all revisions for a slug, newest first
	ListRevisions(slug string) ([]*models.Revision, error)

	// LatestRevision returns the most recent revision for a slug
	LatestRevision(slug string) (*models.Revision, error)

	DeleteRevisions(slug string) error
	CountRevisions() (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	ContentStorage() ContentStorage
	RevisionStorage() RevisionStorage
	DB() interface{}
	Close() error
}
