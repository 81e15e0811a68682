package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// stubCatalog returns canned catalog data so handlers can be exercised
// without storage
type stubCatalog struct {
	units      map[string]*models.ContentUnit
	posts      []*models.ContentUnit
	pages      []*models.ContentUnit
	tags       []models.LabelCount
	categories []models.LabelCount
	revisions  []*models.Revision
	violations []error
	stats      *models.ContentStats
	listOpts   *interfaces.ListOptions
	scanErrs   []string
	reconciles int
}

func (s *stubCatalog) Reconcile(ctx context.Context) (*models.ScanReport, error) {
	s.reconciles++
	return &models.ScanReport{Scanned: len(s.units), Errors: s.scanErrs}, nil
}

func (s *stubCatalog) Validate(ctx context.Context) []error { return s.violations }

func (s *stubCatalog) ValidateUniqueness(ctx context.Context) error { return nil }

func (s *stubCatalog) GetBySlug(ctx context.Context, slug string) (*models.ContentUnit, error) {
	if unit, ok := s.units[slug]; ok {
		return unit, nil
	}
	return nil, models.ErrNotFound
}

func (s *stubCatalog) ListPosts(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ContentUnit, error) {
	s.listOpts = opts
	return s.posts, nil
}

func (s *stubCatalog) ListPages(ctx context.Context) ([]*models.ContentUnit, error) {
	return s.pages, nil
}

func (s *stubCatalog) Tags(ctx context.Context) ([]models.LabelCount, error) { return s.tags, nil }

func (s *stubCatalog) Categories(ctx context.Context) ([]models.LabelCount, error) {
	return s.categories, nil
}

func (s *stubCatalog) ListRevisions(ctx context.Context, slug string) ([]*models.Revision, error) {
	if _, ok := s.units[slug]; !ok {
		return nil, models.ErrNotFound
	}
	return s.revisions, nil
}

func (s *stubCatalog) GetStats(ctx context.Context) (*models.ContentStats, error) {
	if s.stats != nil {
		return s.stats, nil
	}
	return &models.ContentStats{}, nil
}

// stubAnalyzer returns a fixed analysis for any unit
type stubAnalyzer struct {
	analysis *models.BodyAnalysis
}

func (s *stubAnalyzer) Analyze(unit *models.ContentUnit) (*models.BodyAnalysis, error) {
	return s.analysis, nil
}

func testPost(slug string) *models.ContentUnit {
	return &models.ContentUnit{
		Slug: slug,
		Kind: models.KindPost,
		FrontMatter: models.FrontMatter{
			Title: slug,
			Date:  time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC),
		},
		Body: "body of " + slug,
		Date: time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newContentHandler(catalog *stubCatalog, analyzer interfaces.AnalysisService) *ContentHandler {
	return NewContentHandler(catalog, analyzer, arbor.NewLogger())
}

func TestListPostsHandler(t *testing.T) {
	catalog := &stubCatalog{posts: []*models.ContentUnit{testPost("first"), testPost("second")}}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts?tag=docker&limit=5&offset=2", nil)
	rec := httptest.NewRecorder()
	h.ListPostsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts []models.ContentUnit `json:"posts"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "first", resp.Posts[0].Slug)

	// Query params must reach the service
	require.NotNil(t, catalog.listOpts)
	assert.Equal(t, "docker", catalog.listOpts.Tag)
	assert.Equal(t, 5, catalog.listOpts.Limit)
	assert.Equal(t, 2, catalog.listOpts.Offset)
	assert.Equal(t, models.KindPost, catalog.listOpts.Kind)
}

func TestListPostsHandler_MethodNotAllowed(t *testing.T) {
	h := newContentHandler(&stubCatalog{}, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ListPostsHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetContentHandler(t *testing.T) {
	unit := testPost("hello-world")
	catalog := &stubCatalog{units: map[string]*models.ContentUnit{"hello-world": unit}}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/hello-world", nil)
	rec := httptest.NewRecorder()
	h.GetContentHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.ContentUnit
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, "body of hello-world", got.Body)
}

func TestGetContentHandler_NotFound(t *testing.T) {
	h := newContentHandler(&stubCatalog{}, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/ghost", nil)
	rec := httptest.NewRecorder()
	h.GetContentHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost")
}

func TestGetContentHandler_WithAnalysis(t *testing.T) {
	unit := testPost("analyzed")
	catalog := &stubCatalog{units: map[string]*models.ContentUnit{"analyzed": unit}}
	analyzer := &stubAnalyzer{analysis: &models.BodyAnalysis{WordCount: 42, ReadingTimeMin: 1}}
	h := newContentHandler(catalog, analyzer)

	req := httptest.NewRequest(http.MethodGet, "/api/content/analyzed?analysis=true", nil)
	rec := httptest.NewRecorder()
	h.GetContentHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Unit     models.ContentUnit  `json:"unit"`
		Analysis models.BodyAnalysis `json:"analysis"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "analyzed", resp.Unit.Slug)
	assert.Equal(t, 42, resp.Analysis.WordCount)
}

func TestListRevisionsHandler(t *testing.T) {
	unit := testPost("tracked")
	catalog := &stubCatalog{
		units: map[string]*models.ContentUnit{"tracked": unit},
		revisions: []*models.Revision{
			{ID: "rev2", Slug: "tracked"},
			{ID: "rev1", Slug: "tracked"},
		},
	}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/tracked/revisions", nil)
	rec := httptest.NewRecorder()
	h.ListRevisionsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slug      string            `json:"slug"`
		Revisions []models.Revision `json:"revisions"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tracked", resp.Slug)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "rev2", resp.Revisions[0].ID)
}

func TestListRevisionsHandler_UnknownSlug(t *testing.T) {
	h := newContentHandler(&stubCatalog{}, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/ghost/revisions", nil)
	rec := httptest.NewRecorder()
	h.ListRevisionsHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagsHandler(t *testing.T) {
	catalog := &stubCatalog{tags: []models.LabelCount{{Label: "docker", Count: 3}, {Label: "go", Count: 1}}}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	rec := httptest.NewRecorder()
	h.TagsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tags []models.LabelCount `json:"tags"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tags, 2)
	assert.Equal(t, "docker", resp.Tags[0].Label)
	assert.Equal(t, 3, resp.Tags[0].Count)
}

func TestStatsHandler(t *testing.T) {
	catalog := &stubCatalog{stats: &models.ContentStats{TotalUnits: 5, Posts: 3, Pages: 2}}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.StatsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.ContentStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 5, stats.TotalUnits)
	assert.Equal(t, 3, stats.Posts)
}

func TestValidateHandler(t *testing.T) {
	catalog := &stubCatalog{violations: []error{
		&models.MissingFieldError{Path: "posts/a.md", Field: "title"},
		&models.DuplicateSlugError{Slug: "a", Paths: []string{"posts/a.md", "pages/a.md"}},
	}}
	h := newContentHandler(catalog, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/validate", nil)
	rec := httptest.NewRecorder()
	h.ValidateHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, 2, resp.Count)
	assert.Contains(t, resp.Errors[0], "title")
	assert.Contains(t, resp.Errors[1], `duplicate slug "a"`)
}

func TestValidateHandler_Clean(t *testing.T) {
	h := newContentHandler(&stubCatalog{}, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/validate", nil)
	rec := httptest.NewRecorder()
	h.ValidateHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Valid)
}

func TestExtractSlug(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/content/hello-world", "hello-world"},
		{"/api/content/hello-world/revisions", "hello-world"},
		{"/api/content/hello-world/", "hello-world"},
		{"/api/content/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSlug(tt.path, "/revisions"), "path %s", tt.path)
	}
}
