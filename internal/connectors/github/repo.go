package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// Extensions of files the sync will pull: content markdown plus the
// unit-relative assets it may reference.
var contentExts = map[string]bool{
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// FetchContent downloads the configured content path at the configured ref
// into destDir, preserving the repo's directory layout under the content
// path. Files already on disk with identical bytes are skipped, so a sync
// followed by a rescan reports no spurious updates.
func (c *Connector) FetchContent(ctx context.Context, destDir string) (*models.SyncReport, error) {
	started := time.Now()
	report := &models.SyncReport{
		Source:    fmt.Sprintf("%s/%s", c.config.Owner, c.config.Repo),
		Ref:       c.ref(),
		StartedAt: started.UTC(),
	}

	tree, _, err := c.client.Git.GetTree(ctx, c.config.Owner, c.config.Repo, c.ref(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository tree: %w", err)
	}
	if tree.GetTruncated() {
		c.logger.Warn().
			Str("repo", report.Source).
			Msg("Repository tree truncated by GitHub, sync may be incomplete")
	}

	prefix := strings.Trim(c.config.Path, "/")

	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}

		rel, ok := contentRelPath(entry.GetPath(), prefix)
		if !ok {
			continue
		}

		data, err := c.fetchBlob(ctx, entry.GetSHA())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", entry.GetPath(), err)
		}
		report.Fetched++

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
			report.Skipped++
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", rel, err)
		}
		report.Written++
	}

	report.Duration = time.Since(started).String()

	c.logger.Info().
		Str("repo", report.Source).
		Str("ref", report.Ref).
		Int("fetched", report.Fetched).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Str("duration", report.Duration).
		Msg("GitHub content sync completed")

	return report, nil
}

func (c *Connector) ref() string {
	if c.config.Ref != "" {
		return c.config.Ref
	}
	return "main"
}

// fetchBlob downloads a blob by SHA. Blobs come back base64-encoded.
func (c *Connector) fetchBlob(ctx context.Context, sha string) ([]byte, error) {
	blob, _, err := c.client.Git.GetBlob(ctx, c.config.Owner, c.config.Repo, sha)
	if err != nil {
		return nil, err
	}

	content := blob.GetContent()
	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to decode blob: %w", err)
		}
		return decoded, nil
	}
	return []byte(content), nil
}

// contentRelPath maps a repo path to its path relative to the content
// prefix. Paths outside the prefix or with a non-content extension are
// rejected.
func contentRelPath(repoPath, prefix string) (string, bool) {
	rel := repoPath
	if prefix != "" {
		if !strings.HasPrefix(repoPath, prefix+"/") {
			return "", false
		}
		rel = strings.TrimPrefix(repoPath, prefix+"/")
	}

	if !contentExts[strings.ToLower(filepath.Ext(rel))] {
		return "", false
	}
	return rel, true
}
