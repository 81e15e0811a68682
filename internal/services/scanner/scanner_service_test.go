package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/models"
)

func newTestScanner(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()

	config := common.NewDefaultConfig()
	config.Content.PostsDir = filepath.Join(dir, "posts")
	config.Content.PagesDir = filepath.Join(dir, "pages")
	require.NoError(t, os.MkdirAll(config.Content.PostsDir, 0755))
	require.NoError(t, os.MkdirAll(config.Content.PagesDir, 0755))

	return NewService(config, arbor.NewLogger()), dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScan_KindFollowsRoot(t *testing.T) {
	svc, dir := newTestScanner(t)

	writeFile(t, filepath.Join(dir, "posts", "first.md"),
		"---\ntitle: First\ndate: 2023-09-10\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "pages", "about.md"),
		"---\ntitle: About\n---\nbody\n")

	result, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Units, 2)

	byKind := map[models.ContentKind]*models.ContentUnit{}
	for _, unit := range result.Units {
		byKind[unit.Kind] = unit
	}
	assert.Equal(t, "first", byKind[models.KindPost].Slug)
	assert.Equal(t, "about", byKind[models.KindPage].Slug)
}

func TestScan_IndexCollapsesToDirectory(t *testing.T) {
	svc, dir := newTestScanner(t)

	writeFile(t, filepath.Join(dir, "posts", "testcontainers", "index.md"),
		"---\ntitle: Testcontainers\ndate: 2023-09-10\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "posts", "2023", "review", "index.md"),
		"---\ntitle: Review\ndate: 2023-12-31\n---\nbody\n")

	result, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Units, 2)

	slugs := []string{result.Units[0].Slug, result.Units[1].Slug}
	assert.Contains(t, slugs, "testcontainers")
	assert.Contains(t, slugs, "2023/review")
}

func TestScan_CollectsAllErrors(t *testing.T) {
	svc, dir := newTestScanner(t)

	writeFile(t, filepath.Join(dir, "posts", "good.md"),
		"---\ntitle: Good\ndate: 2023-09-10\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "posts", "broken.md"),
		"---\ntitle: [unclosed\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "posts", "undated.md"),
		"---\ntitle: Undated\n---\nbody\n")

	result, err := svc.Scan(context.Background())
	require.NoError(t, err, "per-file errors must not abort the walk")

	require.Len(t, result.Units, 1)
	assert.Equal(t, "good", result.Units[0].Slug)

	require.Len(t, result.Errors, 2)
	foundMalformed, foundMissing := false, false
	for _, scanErr := range result.Errors {
		var malformed *models.MalformedFrontMatterError
		var missing *models.MissingFieldError
		if errors.As(scanErr, &malformed) {
			foundMalformed = true
			assert.Contains(t, malformed.Path, "broken.md")
		}
		if errors.As(scanErr, &missing) {
			foundMissing = true
			assert.Equal(t, "date", missing.Field)
		}
	}
	assert.True(t, foundMalformed, "expected a malformed front matter error")
	assert.True(t, foundMissing, "expected a missing field error")
}

func TestScan_SkipsNonContentFiles(t *testing.T) {
	svc, dir := newTestScanner(t)

	writeFile(t, filepath.Join(dir, "posts", "post.md"),
		"---\ntitle: Post\ndate: 2023-09-10\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "posts", "cover.png"), "not markdown")
	writeFile(t, filepath.Join(dir, "posts", ".draft.md"),
		"---\ntitle: Draft\ndate: 2023-09-10\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "posts", ".obsidian", "workspace.md"), "junk")

	result, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Units, 1)
	assert.Equal(t, "post", result.Units[0].Slug)
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	svc, _ := newTestScanner(t)
	svc.config.Content.PagesDir = "/nonexistent/pages"

	result, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Units)
}

func TestScan_CancelledContext(t *testing.T) {
	svc, dir := newTestScanner(t)
	writeFile(t, filepath.Join(dir, "posts", "post.md"),
		"---\ntitle: Post\ndate: 2023-09-10\n---\nbody\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Scan(ctx)
	require.Error(t, err)
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"flat file", "content/posts", "content/posts/testcontainers.md", "testcontainers"},
		{"index collapse", "content/posts", "content/posts/testcontainers/index.md", "testcontainers"},
		{"nested file", "content/posts", "content/posts/2023/review.md", "2023/review"},
		{"nested index", "content/posts", "content/posts/2023/review/index.md", "2023/review"},
		{"root index", "content/pages", "content/pages/index.md", "index"},
		{"index prefix is not index", "content/posts", "content/posts/indexing-tips.md", "indexing-tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, err := DeriveSlug(tt.root, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slug)
		})
	}
}
