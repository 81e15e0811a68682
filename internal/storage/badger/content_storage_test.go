package badger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	dir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &BadgerDB{store: store}
}

func testUnit(slug string, kind models.ContentKind, date time.Time) *models.ContentUnit {
	return &models.ContentUnit{
		Slug:       slug,
		Kind:       kind,
		SourcePath: "content/" + string(kind) + "s/" + slug + ".md",
		FrontMatter: models.FrontMatter{
			Title: slug,
			Date:  date,
			Tags:  []string{"go"},
		},
		Body:        "body of " + slug,
		Date:        date,
		ContentHash: models.HashContent([]byte(slug)),
	}
}

func TestContentStorage_SaveAndGet(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	unit := testUnit("first-post", models.KindPost, time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, storage.SaveUnit(unit))
	assert.False(t, unit.CreatedAt.IsZero())
	assert.False(t, unit.UpdatedAt.IsZero())

	got, err := storage.GetUnit("first-post")
	require.NoError(t, err)
	assert.Equal(t, "first-post", got.Slug)
	assert.Equal(t, unit.Body, got.Body)
	assert.Equal(t, unit.FrontMatter.Title, got.FrontMatter.Title)
}

func TestContentStorage_GetMissingIsErrNotFound(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	unit, err := storage.GetUnit("no-such-slug")
	assert.Nil(t, unit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Contains(t, err.Error(), "no-such-slug")
}

func TestContentStorage_SaveIsUpsertOnSlug(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	date := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveUnit(testUnit("post", models.KindPost, date)))

	updated := testUnit("post", models.KindPost, date)
	updated.Body = "rewritten body"
	require.NoError(t, storage.SaveUnit(updated))

	count, err := storage.CountUnits()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same slug must update, not duplicate")

	got, err := storage.GetUnit("post")
	require.NoError(t, err)
	assert.Equal(t, "rewritten body", got.Body)
}

func TestContentStorage_SaveRequiresSlug(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())
	err := storage.SaveUnit(&models.ContentUnit{})
	require.Error(t, err)
}

func TestContentStorage_ListFilters(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	date := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	post := testUnit("a-post", models.KindPost, date)
	post.FrontMatter.Tags = []string{"go", "testing"}
	post.FrontMatter.Categories = []string{"Development"}
	page := testUnit("about", models.KindPage, time.Time{})
	page.FrontMatter.Tags = nil
	require.NoError(t, storage.SaveUnits([]*models.ContentUnit{post, page}))

	posts, err := storage.ListUnits(&interfaces.ListOptions{Kind: models.KindPost})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a-post", posts[0].Slug)

	tagged, err := storage.ListUnits(&interfaces.ListOptions{Tag: "testing"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "a-post", tagged[0].Slug)

	categorized, err := storage.ListUnits(&interfaces.ListOptions{Category: "Development"})
	require.NoError(t, err)
	require.Len(t, categorized, 1)

	none, err := storage.ListUnits(&interfaces.ListOptions{Tag: "rust"})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := storage.ListUnits(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestContentStorage_ListPagination(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	date := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	for _, slug := range []string{"one", "two", "three"} {
		require.NoError(t, storage.SaveUnit(testUnit(slug, models.KindPost, date)))
	}

	limited, err := storage.ListUnits(&interfaces.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	skipped, err := storage.ListUnits(&interfaces.ListOptions{Offset: 2})
	require.NoError(t, err)
	assert.Len(t, skipped, 1)

	past, err := storage.ListUnits(&interfaces.ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestContentStorage_DeleteAndClear(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	date := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveUnit(testUnit("one", models.KindPost, date)))
	require.NoError(t, storage.SaveUnit(testUnit("two", models.KindPost, date)))

	require.NoError(t, storage.DeleteUnit("one"))
	_, err := storage.GetUnit("one")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	// Deleting a missing unit is a no-op
	require.NoError(t, storage.DeleteUnit("one"))

	require.NoError(t, storage.ClearAll())
	count, err := storage.CountUnits()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestContentStorage_ListSlugsAndCounts(t *testing.T) {
	storage := NewContentStorage(newTestDB(t), arbor.NewLogger())

	date := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveUnit(testUnit("post-one", models.KindPost, date)))
	require.NoError(t, storage.SaveUnit(testUnit("post-two", models.KindPost, date)))
	require.NoError(t, storage.SaveUnit(testUnit("about", models.KindPage, time.Time{})))

	slugs, err := storage.ListSlugs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post-one", "post-two", "about"}, slugs)

	posts, err := storage.CountByKind(models.KindPost)
	require.NoError(t, err)
	assert.Equal(t, 2, posts)

	pages, err := storage.CountByKind(models.KindPage)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}
