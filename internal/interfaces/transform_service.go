package interfaces

import "github.com/ternarybob/folio/internal/models"

// TransformService provides HTML to markdown conversion functionality
type TransformService interface {
	// HTMLToMarkdown converts HTML content to markdown
	// baseURL is used for resolving relative links
	HTMLToMarkdown(html string, baseURL string) (string, error)

	// ValidateHTML checks if the input looks like valid HTML
	ValidateHTML(content string) error

	// ImportHTML builds a content unit from a legacy HTML document,
	// deriving front matter from the DOM: <title>, meta description,
	// published time, article tags
	ImportHTML(html string, baseURL string) (*models.ContentUnit, error)
}
