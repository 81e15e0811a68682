package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// RevisionStorage implements the RevisionStorage interface for Badger.
// Revisions are append-only; one slug accumulates many of them.
type RevisionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRevisionStorage creates a new RevisionStorage instance
func NewRevisionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RevisionStorage {
	return &RevisionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RevisionStorage) SaveRevision(rev *models.Revision) error {
	if rev.ID == "" {
		return fmt.Errorf("revision ID is required")
	}
	if rev.Slug == "" {
		return fmt.Errorf("revision slug is required")
	}

	if err := s.db.Store().Upsert(rev.ID, rev); err != nil {
		return fmt.Errorf("failed to save revision: %w", err)
	}
	return nil
}

func (s *RevisionStorage) GetRevision(id string) (*models.Revision, error) {
	var rev models.Revision
	if err := s.db.Store().Get(id, &rev); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("revision %q: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return &rev, nil
}

// ListRevisions returns all revisions for a slug, newest first
func (s *RevisionStorage) ListRevisions(slug string) ([]*models.Revision, error) {
	var revs []models.Revision
	query := badgerhold.Where("Slug").Eq(slug).SortBy("CapturedAt").Reverse()
	if err := s.db.Store().Find(&revs, query); err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	result := make([]*models.Revision, len(revs))
	for i := range revs {
		result[i] = &revs[i]
	}
	return result, nil
}

// LatestRevision returns the most recent revision for a slug
func (s *RevisionStorage) LatestRevision(slug string) (*models.Revision, error) {
	var revs []models.Revision
	query := badgerhold.Where("Slug").Eq(slug).SortBy("CapturedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&revs, query); err != nil {
		return nil, fmt.Errorf("failed to get latest revision: %w", err)
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("revisions for slug %q: %w", slug, models.ErrNotFound)
	}
	return &revs[0], nil
}

func (s *RevisionStorage) DeleteRevisions(slug string) error {
	if err := s.db.Store().DeleteMatching(&models.Revision{}, badgerhold.Where("Slug").Eq(slug)); err != nil {
		return fmt.Errorf("failed to delete revisions: %w", err)
	}
	return nil
}

func (s *RevisionStorage) CountRevisions() (int, error) {
	count, err := s.db.Store().Count(&models.Revision{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count revisions: %w", err)
	}
	return int(count), nil
}
