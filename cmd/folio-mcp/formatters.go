package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// formatPostList formats a post listing as markdown
func formatPostList(posts []*models.ContentUnit, opts *interfaces.ListOptions) string {
	var sb strings.Builder

	heading := fmt.Sprintf("## Posts (%d results)", len(posts))
	if opts.Tag != "" {
		heading += fmt.Sprintf(" tagged \"%s\"", opts.Tag)
	}
	if opts.Category != "" {
		heading += fmt.Sprintf(" in \"%s\"", opts.Category)
	}
	sb.WriteString(heading + "\n\n")

	if len(posts) == 0 {
		sb.WriteString("No posts found.\n")
		return sb.String()
	}

	for i, post := range posts {
		sb.WriteString(fmt.Sprintf("%d. **%s** (`%s`)\n", i+1, post.FrontMatter.Title, post.Slug))
		sb.WriteString(fmt.Sprintf("   Date: %s\n", post.Date.Format("2006-01-02")))
		if post.FrontMatter.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", post.FrontMatter.Description))
		}
		if len(post.FrontMatter.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("   Tags: %s\n", strings.Join(post.FrontMatter.Tags, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatPageList formats a page listing as markdown
func formatPageList(pages []*models.ContentUnit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Pages (%d results)\n\n", len(pages)))

	if len(pages) == 0 {
		sb.WriteString("No pages found.\n")
		return sb.String()
	}

	for i, page := range pages {
		sb.WriteString(fmt.Sprintf("%d. **%s** (`%s`)\n", i+1, page.FrontMatter.Title, page.Slug))
		if page.FrontMatter.Menu != nil && page.FrontMatter.Menu.Main != nil {
			sb.WriteString(fmt.Sprintf("   Menu weight: %d\n", page.FrontMatter.Menu.Main.Weight))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatUnit formats a single content unit as markdown
func formatUnit(unit *models.ContentUnit, analysis *models.BodyAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", unit.FrontMatter.Title))
	sb.WriteString(fmt.Sprintf("**Slug:** %s\n", unit.Slug))
	sb.WriteString(fmt.Sprintf("**Kind:** %s\n", unit.Kind))
	sb.WriteString(fmt.Sprintf("**Source:** %s\n", unit.SourcePath))
	if unit.FrontMatter.HasDate() {
		sb.WriteString(fmt.Sprintf("**Date:** %s\n", unit.Date.Format("2006-01-02")))
	}
	if unit.FrontMatter.Description != "" {
		sb.WriteString(fmt.Sprintf("**Description:** %s\n", unit.FrontMatter.Description))
	}
	if len(unit.FrontMatter.Categories) > 0 {
		sb.WriteString(fmt.Sprintf("**Categories:** %s\n", strings.Join(unit.FrontMatter.Categories, ", ")))
	}
	if len(unit.FrontMatter.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(unit.FrontMatter.Tags, ", ")))
	}
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n", unit.UpdatedAt.Format(time.RFC3339)))

	if analysis != nil {
		sb.WriteString(fmt.Sprintf("**Words:** %d (~%d min read)\n", analysis.WordCount, analysis.ReadingTimeMin))
	}

	sb.WriteString("\n## Body\n\n")
	sb.WriteString(unit.Body)
	sb.WriteString("\n")

	return sb.String()
}

// formatRevisions formats a revision history as markdown
func formatRevisions(slug string, revisions []*models.Revision) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Revisions for \"%s\" (%d captured)\n\n", slug, len(revisions)))

	if len(revisions) == 0 {
		sb.WriteString("No revisions captured yet.\n")
		return sb.String()
	}

	for i, rev := range revisions {
		sb.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, rev.ID))
		sb.WriteString(fmt.Sprintf("   Captured: %s\n", rev.CapturedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("   Title: %s\n", rev.FrontMatter.Title))
		sb.WriteString(fmt.Sprintf("   Hash: %s\n\n", shortHash(rev.ContentHash)))
	}

	return sb.String()
}

// formatValidation formats integrity violations as markdown
func formatValidation(violations []error) string {
	var sb strings.Builder

	if len(violations) == 0 {
		sb.WriteString("## Validation passed\n\nNo integrity errors found.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("## Validation failed (%d errors)\n\n", len(violations)))
	for i, v := range violations {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, v.Error()))
	}

	return sb.String()
}

// formatScanReport formats a scan report as markdown
func formatScanReport(report *models.ScanReport) string {
	var sb strings.Builder

	if report.Failed() {
		sb.WriteString(fmt.Sprintf("## Scan rejected (%d errors)\n\n", len(report.Errors)))
		sb.WriteString("The catalog was left unchanged.\n\n")
		for i, e := range report.Errors {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, e))
		}
		return sb.String()
	}

	sb.WriteString("## Scan complete\n\n")
	sb.WriteString(fmt.Sprintf("- Scanned: %d\n", report.Scanned))
	sb.WriteString(fmt.Sprintf("- Added: %d\n", report.Added))
	sb.WriteString(fmt.Sprintf("- Updated: %d\n", report.Updated))
	sb.WriteString(fmt.Sprintf("- Removed: %d\n", report.Removed))
	sb.WriteString(fmt.Sprintf("- Unchanged: %d\n", report.Unchanged))
	sb.WriteString(fmt.Sprintf("- Duration: %s\n", report.Duration))

	return sb.String()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
