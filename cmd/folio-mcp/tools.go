package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createListPostsTool returns the list_posts tool definition
func createListPostsTool() mcp.Tool {
	return mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts from the Folio content catalog, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 20, max: 100)"),
		),
		mcp.WithString("tag",
			mcp.Description("Filter by tag (exact match)"),
		),
		mcp.WithString("category",
			mcp.Description("Filter by category (exact match)"),
		),
	)
}

// createListPagesTool returns the list_pages tool definition
func createListPagesTool() mcp.Tool {
	return mcp.NewTool("list_pages",
		mcp.WithDescription("List standalone pages (about, contact) ordered by menu weight"),
	)
}

// createGetContentTool returns the get_content tool definition
func createGetContentTool() mcp.Tool {
	return mcp.NewTool("get_content",
		mcp.WithDescription("Retrieve a single content unit by its slug, with body analysis"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Unit slug (e.g. testcontainers-advanced)"),
		),
	)
}

// createListRevisionsTool returns the list_revisions tool definition
func createListRevisionsTool() mcp.Tool {
	return mcp.NewTool("list_revisions",
		mcp.WithDescription("List the revision history captured for a slug, newest first"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Unit slug"),
		),
	)
}

// createValidateContentTool returns the validate_content tool definition
func createValidateContentTool() mcp.Tool {
	return mcp.NewTool("validate_content",
		mcp.WithDescription("Run a read-only integrity pass over the content roots: malformed front matter, missing required fields, slug collisions"),
	)
}

// createScanContentTool returns the scan_content tool definition
func createScanContentTool() mcp.Tool {
	return mcp.NewTool("scan_content",
		mcp.WithDescription("Reconcile the catalog against the content roots and report what changed"),
	)
}
