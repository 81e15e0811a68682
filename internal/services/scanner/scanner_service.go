package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/frontmatter"
)

// Service walks the content roots and parses every markdown file it finds.
// Files are the only write path into the catalog; the scanner is where the
// filesystem turns into content units.
type Service struct {
	config *common.Config
	logger arbor.ILogger
}

var _ interfaces.ScannerService = (*Service)(nil)

// NewService creates a new scanner service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Scan parses all content files under the configured roots. Per-file
// integrity errors are collected in the result so one pass reports every
// offending file; only a failed directory walk aborts the scan.
func (s *Service) Scan(ctx context.Context) (*interfaces.ScanResult, error) {
	result := &interfaces.ScanResult{}

	roots := []struct {
		dir  string
		kind models.ContentKind
	}{
		{s.config.Content.PostsDir, models.KindPost},
		{s.config.Content.PagesDir, models.KindPage},
	}

	for _, root := range roots {
		if root.dir == "" {
			continue
		}
		if err := s.scanRoot(ctx, root.dir, root.kind, result); err != nil {
			return nil, err
		}
	}

	s.logger.Debug().
		Int("units", len(result.Units)).
		Int("errors", len(result.Errors)).
		Msg("Content scan pass finished")

	return result, nil
}

func (s *Service) scanRoot(ctx context.Context, root string, kind models.ContentKind, result *interfaces.ScanResult) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		s.logger.Warn().Str("root", root).Str("kind", string(kind)).Msg("Content root does not exist, skipping")
		return nil
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := entry.Name()
		if entry.IsDir() {
			// Hidden directories are not content
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !s.hasContentExtension(name) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		unit, err := frontmatter.Parse(path, kind, raw)
		if err != nil {
			// Collect and keep walking so the report names every bad file
			result.Errors = append(result.Errors, err)
			return nil
		}

		slug, err := DeriveSlug(root, path)
		if err != nil {
			return err
		}
		unit.Slug = slug
		result.Units = append(result.Units, unit)
		return nil
	})
}

func (s *Service) hasContentExtension(name string) bool {
	extensions := s.config.Content.Extensions
	if len(extensions) == 0 {
		extensions = []string{".md"}
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// DeriveSlug maps a file's location under its section root to the unit's
// identity: the root-relative path with the extension stripped, using "/"
// separators. An index file collapses to its directory, so
// posts/testcontainers/index.md and posts/testcontainers.md both carry the
// slug "testcontainers".
func DeriveSlug(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("path %s is not under root %s: %w", path, root, err)
	}

	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	base := rel
	dir := ""
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		base = rel[idx+1:]
		dir = rel[:idx]
	}
	if base == "index" {
		if dir != "" {
			return dir, nil
		}
		// A root-level index file keeps its own name
		return "index", nil
	}

	return rel, nil
}
