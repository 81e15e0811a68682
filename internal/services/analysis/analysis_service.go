package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Service derives word counts, reading time, excerpts and heading outlines
// from markdown bodies by walking the AST. The body is never rendered to
// HTML; presentation stays with the consumer.
type Service struct {
	md             goldmark.Markdown
	wordsPerMinute int
	excerptLength  int
	logger         arbor.ILogger
}

var _ interfaces.AnalysisService = (*Service)(nil)

// NewService creates a new analysis service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	wordsPerMinute := config.Analysis.WordsPerMinute
	if wordsPerMinute <= 0 {
		wordsPerMinute = 200
	}
	excerptLength := config.Analysis.ExcerptLength
	if excerptLength <= 0 {
		excerptLength = 280
	}

	return &Service{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		wordsPerMinute: wordsPerMinute,
		excerptLength:  excerptLength,
		logger:         logger,
	}
}

// Analyze walks the markdown AST and returns derived metadata. Words inside
// fenced code blocks are not prose and do not count.
func (s *Service) Analyze(unit *models.ContentUnit) (*models.BodyAnalysis, error) {
	if unit == nil {
		return nil, fmt.Errorf("nil content unit")
	}

	source := []byte(unit.Body)
	doc := s.md.Parser().Parse(text.NewReader(source))

	walker := &bodyWalker{source: source}
	if err := ast.Walk(doc, walker.walk); err != nil {
		return nil, fmt.Errorf("failed to walk markdown AST: %w", err)
	}

	analysis := &models.BodyAnalysis{
		WordCount: walker.words,
		Headings:  walker.headings,
	}

	// Round up so short posts still report a minute
	analysis.ReadingTimeMin = (walker.words + s.wordsPerMinute - 1) / s.wordsPerMinute
	if analysis.ReadingTimeMin < 1 {
		analysis.ReadingTimeMin = 1
	}

	excerpt := strings.TrimSpace(unit.FrontMatter.Description)
	if excerpt == "" {
		excerpt = strings.TrimSpace(walker.firstParagraph)
	}
	analysis.Excerpt = truncateOnWordBoundary(excerpt, s.excerptLength)

	s.logger.Debug().
		Str("slug", unit.Slug).
		Int("words", analysis.WordCount).
		Int("reading_time_min", analysis.ReadingTimeMin).
		Int("headings", len(analysis.Headings)).
		Msg("Analyzed content body")

	return analysis, nil
}

type bodyWalker struct {
	source         []byte
	words          int
	headings       []models.Heading
	firstParagraph string
}

func (w *bodyWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch n.Kind() {
	case ast.KindText:
		segment := n.(*ast.Text).Segment
		w.words += len(strings.Fields(string(segment.Value(w.source))))
	case ast.KindHeading:
		heading := n.(*ast.Heading)
		w.headings = append(w.headings, models.Heading{
			Level: heading.Level,
			Text:  nodeText(heading, w.source),
		})
	case ast.KindParagraph:
		// Only a document-level paragraph can open the excerpt
		if w.firstParagraph == "" && n.Parent() != nil && n.Parent().Kind() == ast.KindDocument {
			w.firstParagraph = nodeText(n, w.source)
		}
	}

	return ast.WalkContinue, nil
}

// nodeText concatenates the text segments under a node
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// truncateOnWordBoundary cuts at the last space before the rune limit and
// marks the truncation
func truncateOnWordBoundary(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := string(runes[:limit])
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + "..."
}
