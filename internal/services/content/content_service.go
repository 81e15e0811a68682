package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Service implements ContentService. It owns the catalog semantics: the
// filesystem is the source of truth, Reconcile syncs the store to it, and
// every read path serves from the store.
type Service struct {
	storage   interfaces.ContentStorage
	revisions interfaces.RevisionStorage
	scanner   interfaces.ScannerService
	events    interfaces.EventService
	logger    arbor.ILogger

	// reconcileMu serializes scans; overlapping reconciles would race on
	// the add/update/remove diff.
	reconcileMu sync.Mutex

	statusMu    sync.RWMutex
	lastScan    time.Time
	lastScanErr string
}

// NewService creates a new content catalog service
func NewService(
	storage interfaces.ContentStorage,
	revisions interfaces.RevisionStorage,
	scanner interfaces.ScannerService,
	events interfaces.EventService,
	logger arbor.ILogger,
) interfaces.ContentService {
	return &Service{
		storage:   storage,
		revisions: revisions,
		scanner:   scanner,
		events:    events,
		logger:    logger,
	}
}

// Reconcile scans the content roots and syncs the catalog to what it finds.
// Integrity errors (malformed front matter, missing fields, slug collisions)
// abort the sync before any write, so a failed scan leaves the catalog
// exactly as it was. The returned report carries those errors; a non-nil
// error means the scan or storage itself failed.
func (s *Service) Reconcile(ctx context.Context) (*models.ScanReport, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	started := time.Now()
	report := &models.ScanReport{StartedAt: started.UTC()}

	s.publish(ctx, interfaces.EventScanStarted, nil)

	result, err := s.scanner.Scan(ctx)
	if err != nil {
		s.recordScan(started, err.Error())
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	report.Scanned = len(result.Units)

	integrityErrs := append([]error{}, result.Errors...)
	integrityErrs = append(integrityErrs, collectDuplicates(result.Units)...)
	if len(integrityErrs) > 0 {
		for _, e := range integrityErrs {
			report.Errors = append(report.Errors, e.Error())
		}
		report.Duration = time.Since(started).String()
		s.recordScan(started, fmt.Sprintf("%d integrity errors", len(integrityErrs)))
		s.logger.Warn().
			Int("errors", len(integrityErrs)).
			Msg("Scan found integrity errors, catalog left untouched")
		s.publishScanCompleted(ctx, report)
		return report, nil
	}

	existing, err := s.storage.ListSlugs()
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog slugs: %w", err)
	}
	seen := make(map[string]bool, len(result.Units))

	for _, unit := range result.Units {
		seen[unit.Slug] = true

		current, err := s.storage.GetUnit(unit.Slug)
		switch {
		case errors.Is(err, models.ErrNotFound):
			if err := s.saveWithRevision(unit); err != nil {
				return nil, err
			}
			report.Added++
			s.publish(ctx, interfaces.EventContentAdded, unitPayload(unit))

		case err != nil:
			return nil, fmt.Errorf("failed to read unit %q: %w", unit.Slug, err)

		case current.ContentHash == unit.ContentHash:
			report.Unchanged++

		default:
			unit.CreatedAt = current.CreatedAt
			if err := s.saveWithRevision(unit); err != nil {
				return nil, err
			}
			report.Updated++
			s.publish(ctx, interfaces.EventContentUpdated, unitPayload(unit))
		}
	}

	for _, slug := range existing {
		if seen[slug] {
			continue
		}
		if err := s.storage.DeleteUnit(slug); err != nil {
			return nil, fmt.Errorf("failed to remove unit %q: %w", slug, err)
		}
		if err := s.revisions.DeleteRevisions(slug); err != nil {
			s.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to delete revisions for removed unit")
		}
		report.Removed++
		s.publish(ctx, interfaces.EventContentRemoved, map[string]interface{}{"slug": slug})
	}

	report.Duration = time.Since(started).String()
	s.recordScan(started, "")

	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("added", report.Added).
		Int("updated", report.Updated).
		Int("removed", report.Removed).
		Int("unchanged", report.Unchanged).
		Str("duration", report.Duration).
		Msg("Catalog reconciled")

	s.publishScanCompleted(ctx, report)
	return report, nil
}

// saveWithRevision persists the unit and appends a revision capturing its
// current content. Every stored version of a slug appears in the trail, so
// the latest revision always matches the unit in the catalog.
func (s *Service) saveWithRevision(unit *models.ContentUnit) error {
	if err := s.storage.SaveUnit(unit); err != nil {
		return fmt.Errorf("failed to save unit %q: %w", unit.Slug, err)
	}

	rev := &models.Revision{
		ID:          common.NewRevisionID(),
		Slug:        unit.Slug,
		ContentHash: unit.ContentHash,
		FrontMatter: unit.FrontMatter,
		Body:        unit.Body,
		CapturedAt:  time.Now().UTC(),
	}
	if err := s.revisions.SaveRevision(rev); err != nil {
		s.logger.Warn().Err(err).Str("slug", unit.Slug).Msg("Failed to append revision")
	}
	return nil
}

// Validate runs the full integrity pass read-only and returns every error
// found. The catalog is not touched.
func (s *Service) Validate(ctx context.Context) []error {
	result, err := s.scanner.Scan(ctx)
	if err != nil {
		return []error{fmt.Errorf("scan failed: %w", err)}
	}

	errs := append([]error{}, result.Errors...)
	errs = append(errs, collectDuplicates(result.Units)...)
	return errs
}

// ValidateUniqueness scans the content roots and reports the first slug
// claimed by more than one source file.
func (s *Service) ValidateUniqueness(ctx context.Context) error {
	result, err := s.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	dups := collectDuplicates(result.Units)
	if len(dups) > 0 {
		return dups[0]
	}
	return nil
}

// collectDuplicates groups scanned units by slug and builds one error per
// slug claimed by multiple files. Results are slug-ordered so repeated scans
// report collisions deterministically.
func collectDuplicates(units []*models.ContentUnit) []error {
	paths := make(map[string][]string)
	for _, unit := range units {
		paths[unit.Slug] = append(paths[unit.Slug], unit.SourcePath)
	}

	var slugs []string
	for slug, p := range paths {
		if len(p) > 1 {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)

	var errs []error
	for _, slug := range slugs {
		sort.Strings(paths[slug])
		errs = append(errs, &models.DuplicateSlugError{Slug: slug, Paths: paths[slug]})
	}
	return errs
}

// GetBySlug retrieves a unit by its slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.ContentUnit, error) {
	return s.storage.GetUnit(slug)
}

// ListPosts returns dated posts newest first; posts sharing a date order by
// slug so listings are stable across scans.
func (s *Service) ListPosts(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ContentUnit, error) {
	if opts == nil {
		opts = &interfaces.ListOptions{}
	}

	posts, err := s.storage.ListUnits(&interfaces.ListOptions{
		Kind:     models.KindPost,
		Tag:      opts.Tag,
		Category: opts.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})

	return paginate(posts, opts.Offset, opts.Limit), nil
}

// ListPages returns standalone pages ordered by menu weight, then slug.
// Pages without a menu entry sort as weight zero.
func (s *Service) ListPages(ctx context.Context) ([]*models.ContentUnit, error) {
	pages, err := s.storage.ListUnits(&interfaces.ListOptions{Kind: models.KindPage})
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	sort.Slice(pages, func(i, j int) bool {
		wi, wj := menuWeight(pages[i]), menuWeight(pages[j])
		if wi != wj {
			return wi < wj
		}
		return pages[i].Slug < pages[j].Slug
	})

	return pages, nil
}

func menuWeight(unit *models.ContentUnit) int {
	if unit.FrontMatter.Menu != nil && unit.FrontMatter.Menu.Main != nil {
		return unit.FrontMatter.Menu.Main.Weight
	}
	return 0
}

// Tags aggregates tag usage across posts
func (s *Service) Tags(ctx context.Context) ([]models.LabelCount, error) {
	return s.countLabels(func(u *models.ContentUnit) []string { return u.FrontMatter.Tags })
}

// Categories aggregates category usage across posts
func (s *Service) Categories(ctx context.Context) ([]models.LabelCount, error) {
	return s.countLabels(func(u *models.ContentUnit) []string { return u.FrontMatter.Categories })
}

func (s *Service) countLabels(labels func(*models.ContentUnit) []string) ([]models.LabelCount, error) {
	posts, err := s.storage.ListUnits(&interfaces.ListOptions{Kind: models.KindPost})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	counts := make(map[string]int)
	for _, post := range posts {
		for _, label := range labels(post) {
			counts[label]++
		}
	}

	result := make([]models.LabelCount, 0, len(counts))
	for label, count := range counts {
		result = append(result, models.LabelCount{Label: label, Count: count})
	}

	// Busiest labels first, ties alphabetical
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Label < result[j].Label
	})

	return result, nil
}

// ListRevisions returns the revision history for a slug, newest first.
// An unknown slug yields ErrNotFound rather than an empty history.
func (s *Service) ListRevisions(ctx context.Context, slug string) ([]*models.Revision, error) {
	if _, err := s.storage.GetUnit(slug); err != nil {
		return nil, err
	}
	return s.revisions.ListRevisions(slug)
}

// GetStats returns catalog counters for status endpoints
func (s *Service) GetStats(ctx context.Context) (*models.ContentStats, error) {
	total, err := s.storage.CountUnits()
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}
	posts, err := s.storage.CountByKind(models.KindPost)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	pages, err := s.storage.CountByKind(models.KindPage)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	revisions, err := s.revisions.CountRevisions()
	if err != nil {
		return nil, fmt.Errorf("failed to count revisions: %w", err)
	}
	tags, err := s.Tags(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	s.statusMu.RLock()
	lastScan, lastErr := s.lastScan, s.lastScanErr
	s.statusMu.RUnlock()

	return &models.ContentStats{
		TotalUnits:    total,
		Posts:         posts,
		Pages:         pages,
		Tags:          len(tags),
		Categories:    len(categories),
		Revisions:     revisions,
		LastScan:      lastScan,
		LastScanError: lastErr,
	}, nil
}

func paginate(units []*models.ContentUnit, offset, limit int) []*models.ContentUnit {
	if offset > 0 {
		if offset >= len(units) {
			return []*models.ContentUnit{}
		}
		units = units[offset:]
	}
	if limit > 0 && limit < len(units) {
		units = units[:limit]
	}
	return units
}

func (s *Service) recordScan(at time.Time, errMsg string) {
	s.statusMu.Lock()
	s.lastScan = at.UTC()
	s.lastScanErr = errMsg
	s.statusMu.Unlock()
}

func unitPayload(unit *models.ContentUnit) map[string]interface{} {
	return map[string]interface{}{
		"slug": unit.Slug,
		"kind": string(unit.Kind),
		"path": unit.SourcePath,
	}
}

func (s *Service) publishScanCompleted(ctx context.Context, report *models.ScanReport) {
	s.publish(ctx, interfaces.EventScanCompleted, map[string]interface{}{
		"scanned":   report.Scanned,
		"added":     report.Added,
		"updated":   report.Updated,
		"removed":   report.Removed,
		"unchanged": report.Unchanged,
		"errors":    len(report.Errors),
		"duration":  report.Duration,
	})
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}
