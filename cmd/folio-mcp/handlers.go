package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// handleListPosts implements the list_posts tool
func handleListPosts(contentService interfaces.ContentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse limit (default: 20, max: 100)
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}

		opts := &interfaces.ListOptions{
			Kind:     models.KindPost,
			Tag:      request.GetString("tag", ""),
			Category: request.GetString("category", ""),
			Limit:    limit,
		}

		posts, err := contentService.ListPosts(ctx, opts)
		if err != nil {
			logger.Error().Err(err).Msg("List posts failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		markdown := formatPostList(posts, opts)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListPages implements the list_pages tool
func handleListPages(contentService interfaces.ContentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pages, err := contentService.ListPages(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List pages failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		markdown := formatPageList(pages)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleGetContent implements the get_content tool
func handleGetContent(contentService interfaces.ContentService, analysisService interfaces.AnalysisService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := request.RequireString("slug")
		if err != nil || slug == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: slug parameter is required"),
				},
			}, nil
		}

		unit, err := contentService.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return &mcp.CallToolResult{
					Content: []mcp.Content{
						mcp.NewTextContent(fmt.Sprintf("Content not found: %s", slug)),
					},
				}, nil
			}
			logger.Error().Err(err).Str("slug", slug).Msg("GetBySlug failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Lookup error: %v", err)),
				},
			}, nil
		}

		// Analysis is enrichment; a failure still returns the unit
		analysisResult, err := analysisService.Analyze(unit)
		if err != nil {
			logger.Warn().Err(err).Str("slug", slug).Msg("Body analysis failed")
			analysisResult = nil
		}

		markdown := formatUnit(unit, analysisResult)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListRevisions implements the list_revisions tool
func handleListRevisions(contentService interfaces.ContentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := request.RequireString("slug")
		if err != nil || slug == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: slug parameter is required"),
				},
			}, nil
		}

		revisions, err := contentService.ListRevisions(ctx, slug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return &mcp.CallToolResult{
					Content: []mcp.Content{
						mcp.NewTextContent(fmt.Sprintf("Content not found: %s", slug)),
					},
				}, nil
			}
			logger.Error().Err(err).Str("slug", slug).Msg("ListRevisions failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Revision error: %v", err)),
				},
			}, nil
		}

		markdown := formatRevisions(slug, revisions)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleValidateContent implements the validate_content tool
func handleValidateContent(contentService interfaces.ContentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		violations := contentService.Validate(ctx)

		markdown := formatValidation(violations)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleScanContent implements the scan_content tool
func handleScanContent(contentService interfaces.ContentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := contentService.Reconcile(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Scan failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Scan error: %v", err)),
				},
			}, nil
		}

		markdown := formatScanReport(report)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}
