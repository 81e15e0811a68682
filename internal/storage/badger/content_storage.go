package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// ContentStorage implements the ContentStorage interface for Badger.
// Units are keyed by slug, which is what makes the slug the identity:
// a second save under the same slug is an update, never a sibling.
type ContentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContentStorage creates a new ContentStorage instance
func NewContentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ContentStorage {
	return &ContentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ContentStorage) SaveUnit(unit *models.ContentUnit) error {
	if unit.Slug == "" {
		return fmt.Errorf("content unit slug is required")
	}

	now := time.Now()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now

	if err := s.db.Store().Upsert(unit.Slug, unit); err != nil {
		return fmt.Errorf("failed to save content unit: %w", err)
	}
	return nil
}

func (s *ContentStorage) SaveUnits(units []*models.ContentUnit) error {
	for _, unit := range units {
		if err := s.SaveUnit(unit); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentStorage) GetUnit(slug string) (*models.ContentUnit, error) {
	var unit models.ContentUnit
	if err := s.db.Store().Get(slug, &unit); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("slug %q: %w", slug, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content unit: %w", err)
	}
	return &unit, nil
}

func (s *ContentStorage) DeleteUnit(slug string) error {
	if err := s.db.Store().Delete(slug, &models.ContentUnit{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete content unit: %w", err)
	}
	return nil
}

// ListUnits returns units matching the options. Kind filters through the
// store; tag and category filter in memory because they live on the nested
// front matter. Result order is unspecified here; callers that need the
// catalog ordering sort for themselves.
func (s *ContentStorage) ListUnits(opts *interfaces.ListOptions) ([]*models.ContentUnit, error) {
	var query *badgerhold.Query
	if opts != nil && opts.Kind != "" {
		query = badgerhold.Where("Kind").Eq(opts.Kind)
	}

	var units []models.ContentUnit
	if err := s.db.Store().Find(&units, query); err != nil {
		return nil, fmt.Errorf("failed to list content units: %w", err)
	}

	result := make([]*models.ContentUnit, 0, len(units))
	for i := range units {
		unit := &units[i]
		if opts != nil {
			if opts.Tag != "" && !containsLabel(unit.FrontMatter.Tags, opts.Tag) {
				continue
			}
			if opts.Category != "" && !containsLabel(unit.FrontMatter.Categories, opts.Category) {
				continue
			}
		}
		result = append(result, unit)
	}

	if opts != nil {
		if opts.Offset > 0 {
			if opts.Offset >= len(result) {
				return []*models.ContentUnit{}, nil
			}
			result = result[opts.Offset:]
		}
		if opts.Limit > 0 && opts.Limit < len(result) {
			result = result[:opts.Limit]
		}
	}

	return result, nil
}

func (s *ContentStorage) ListSlugs() ([]string, error) {
	units, err := s.ListUnits(nil)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, len(units))
	for i, unit := range units {
		slugs[i] = unit.Slug
	}
	return slugs, nil
}

func (s *ContentStorage) CountUnits() (int, error) {
	count, err := s.db.Store().Count(&models.ContentUnit{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count content units: %w", err)
	}
	return int(count), nil
}

func (s *ContentStorage) CountByKind(kind models.ContentKind) (int, error) {
	count, err := s.db.Store().Count(&models.ContentUnit{}, badgerhold.Where("Kind").Eq(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count content units by kind: %w", err)
	}
	return int(count), nil
}

func (s *ContentStorage) ClearAll() error {
	return s.db.Store().DeleteMatching(&models.ContentUnit{}, nil)
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
