package transform

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Service provides HTML to markdown conversion and legacy document import
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new transform service
func NewService(logger arbor.ILogger) interfaces.TransformService {
	return &Service{
		logger: logger,
	}
}

// HTMLToMarkdown converts HTML content to markdown
// baseURL is used for resolving relative links
// Returns markdown string or error if conversion fails
func (s *Service) HTMLToMarkdown(html string, baseURL string) (string, error) {
	if html == "" {
		return "", nil
	}

	s.logger.Debug().
		Int("html_length", len(html)).
		Str("base_url", baseURL).
		Msg("Converting HTML to markdown")

	mdConverter := md.NewConverter(baseURL, true, nil)
	converted, err := mdConverter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		// Fallback: strip HTML tags
		stripped := stripHTMLTags(html)
		return stripped, nil
	}

	// Check for empty output
	trimmedMarkdown := strings.TrimSpace(converted)
	if trimmedMarkdown == "" && html != "" {
		s.logger.Warn().
			Int("html_length", len(html)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		stripped := stripHTMLTags(html)
		return stripped, nil
	}

	return converted, nil
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	stripped := re.ReplaceAllString(htmlStr, "")

	spaceRe := regexp.MustCompile(`\s+`)
	cleaned := spaceRe.ReplaceAllString(stripped, " ")

	// Decode HTML entities (basic set)
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")

	return strings.TrimSpace(cleaned)
}

// ValidateHTML checks if the input looks like valid HTML
func (s *Service) ValidateHTML(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("empty content")
	}

	if !strings.Contains(trimmed, "<") {
		return fmt.Errorf("content does not appear to be HTML")
	}

	return nil
}

// chromeSelectors match page furniture that must not survive an import.
var chromeSelectors = []string{
	"script", "style", "noscript",
	"nav", "header", "footer", "aside",
	".comments", ".comments-section", ".sidebar",
}

// ImportHTML builds a post from a legacy HTML document. Front matter is
// derived from the DOM: title, meta description, publication date and
// article tags. A document without a discoverable publication date is
// stamped with the import time. The returned unit carries a suggested slug
// and no source path; the caller decides where the file lands.
func (s *Service) ImportHTML(html string, baseURL string) (*models.ContentUnit, error) {
	if err := s.ValidateHTML(html); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := extractTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("no title found in document")
	}

	date := extractPublishedDate(doc)
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
		s.logger.Debug().Str("title", title).Msg("No publication date in document, using import time")
	}

	markdown, err := s.HTMLToMarkdown(extractArticleHTML(doc), baseURL)
	if err != nil {
		return nil, err
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("document has no article content")
	}

	unit := &models.ContentUnit{
		Slug: Slugify(title),
		Kind: models.KindPost,
		FrontMatter: models.FrontMatter{
			Title:       title,
			Description: extractDescription(doc),
			Date:        date,
			Tags:        extractTags(doc),
		},
		Body: markdown,
		Date: date,
	}

	s.logger.Info().
		Str("title", title).
		Str("slug", unit.Slug).
		Int("tags", len(unit.FrontMatter.Tags)).
		Msg("HTML document imported")

	return unit, nil
}

// extractTitle extracts the page title from various sources
func extractTitle(doc *goquery.Document) string {
	if title := doc.Find("title").First().Text(); title != "" {
		return strings.TrimSpace(title)
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}

	if h1 := doc.Find("h1").First().Text(); h1 != "" {
		return strings.TrimSpace(h1)
	}

	if twitterTitle, exists := doc.Find("meta[name='twitter:title']").Attr("content"); exists && twitterTitle != "" {
		return strings.TrimSpace(twitterTitle)
	}

	return ""
}

func extractDescription(doc *goquery.Document) string {
	if description, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		return strings.TrimSpace(description)
	}
	if ogDescription, exists := doc.Find("meta[property='og:description']").Attr("content"); exists {
		return strings.TrimSpace(ogDescription)
	}
	return ""
}

// extractPublishedDate tries the article meta tag, then <time datetime>
func extractPublishedDate(doc *goquery.Document) time.Time {
	if published, exists := doc.Find("meta[property='article:published_time']").Attr("content"); exists {
		if t := parseDate(published); !t.IsZero() {
			return t
		}
	}

	if datetime, exists := doc.Find("time[datetime]").First().Attr("datetime"); exists {
		if t := parseDate(datetime); !t.IsZero() {
			return t
		}
	}

	return time.Time{}
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range models.DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractTags collects article:tag metas, falling back to meta keywords
func extractTags(doc *goquery.Document) []string {
	var tags []string
	seen := make(map[string]bool)

	doc.Find("meta[property='article:tag']").Each(func(i int, sel *goquery.Selection) {
		if tag, exists := sel.Attr("content"); exists {
			tag = strings.TrimSpace(tag)
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	})
	if len(tags) > 0 {
		return tags
	}

	if keywords, exists := doc.Find("meta[name='keywords']").Attr("content"); exists {
		for _, keyword := range strings.Split(keywords, ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" && !seen[keyword] {
				seen[keyword] = true
				tags = append(tags, keyword)
			}
		}
	}

	return tags
}

// extractArticleHTML returns the inner HTML of the main content region with
// page chrome removed. Tries <article>, then <main>, then <body>.
func extractArticleHTML(doc *goquery.Document) string {
	for _, selector := range []string{"article", "main", "body"} {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}

		cloned := selection.Clone()
		for _, chrome := range chromeSelectors {
			cloned.Find(chrome).Remove()
		}

		if html, err := cloned.Html(); err == nil && strings.TrimSpace(html) != "" {
			return html
		}
	}
	return ""
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a filesystem and URL safe slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
