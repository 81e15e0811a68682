package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/folio/internal/models"
)

func TestParse_YAML(t *testing.T) {
	raw := []byte(`---
title: "Testcontainers in Practice"
description: "Throwaway databases for integration tests"
date: 2023-09-10
image: cover.png
categories:
  - Development
tags:
  - go
  - testing
readingTime: true
comments: true
series: "testing-week"
draft: false
---

Intro paragraph.

## Setup

More text.
`)

	unit, err := Parse("content/posts/testcontainers.md", models.KindPost, raw)
	require.NoError(t, err)

	assert.Equal(t, "Testcontainers in Practice", unit.FrontMatter.Title)
	assert.Equal(t, "Throwaway databases for integration tests", unit.FrontMatter.Description)
	assert.Equal(t, time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC), unit.FrontMatter.Date.UTC())
	assert.Equal(t, "cover.png", unit.FrontMatter.Image)
	assert.Equal(t, []string{"Development"}, unit.FrontMatter.Categories)
	assert.Equal(t, []string{"go", "testing"}, unit.FrontMatter.Tags)
	assert.True(t, unit.FrontMatter.ReadingTime)
	assert.True(t, unit.FrontMatter.Comments)

	// Unrecognized keys are preserved, not interpreted
	require.NotNil(t, unit.FrontMatter.Extra)
	assert.Equal(t, "testing-week", unit.FrontMatter.Extra["series"])
	assert.Equal(t, false, unit.FrontMatter.Extra["draft"])

	assert.Equal(t, models.KindPost, unit.Kind)
	assert.Equal(t, "content/posts/testcontainers.md", unit.SourcePath)
	assert.Contains(t, unit.Body, "## Setup")
	assert.NotEmpty(t, unit.ContentHash)
}

func TestParse_TOML(t *testing.T) {
	raw := []byte(`+++
title = "Self hosting a blog"
date = 2021-03-14
tags = ["hosting", "nginx"]
+++

Body here.
`)

	unit, err := Parse("content/posts/self-hosting.md", models.KindPost, raw)
	require.NoError(t, err)

	assert.Equal(t, "Self hosting a blog", unit.FrontMatter.Title)
	assert.Equal(t, time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC), unit.FrontMatter.Date)
	assert.Equal(t, []string{"hosting", "nginx"}, unit.FrontMatter.Tags)
}

func TestParse_BodyKeptVerbatim(t *testing.T) {
	raw := []byte("---\ntitle: A\ndate: 2023-01-01\n---\n\n```sh\nrm -rf ./tmp\n```\n\n---\n\nA thematic break above.\n")

	unit, err := Parse("content/posts/a.md", models.KindPost, raw)
	require.NoError(t, err)

	// Everything after the closing delimiter line, untouched
	assert.Equal(t, "\n```sh\nrm -rf ./tmp\n```\n\n---\n\nA thematic break above.\n", unit.Body)
}

func TestParse_DateLayouts(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"date only", "2023-09-10", time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2023-09-10T08:30:00Z", time.Date(2023, 9, 10, 8, 30, 0, 0, time.UTC)},
		{"datetime no zone", "2023-09-10T08:30:00", time.Date(2023, 9, 10, 8, 30, 0, 0, time.UTC)},
		{"datetime with space", "2023-09-10 08:30:00", time.Date(2023, 9, 10, 8, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte("---\ntitle: A\ndate: \"" + tt.date + "\"\n---\nbody\n")
			unit, err := Parse("content/posts/a.md", models.KindPost, raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(unit.FrontMatter.Date),
				"want %v, got %v", tt.want, unit.FrontMatter.Date)
		})
	}
}

func TestParse_MissingTitle(t *testing.T) {
	raw := []byte("---\ndate: 2023-09-10\n---\nbody\n")

	_, err := Parse("content/posts/untitled.md", models.KindPost, raw)

	var missing *models.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)
	assert.Equal(t, "content/posts/untitled.md", missing.Path)
}

func TestParse_EmptyTitle(t *testing.T) {
	raw := []byte("---\ntitle: \"  \"\ndate: 2023-09-10\n---\nbody\n")

	_, err := Parse("content/posts/untitled.md", models.KindPost, raw)

	var missing *models.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)
}

func TestParse_PostRequiresDate(t *testing.T) {
	raw := []byte("---\ntitle: About Me\n---\nbody\n")

	_, err := Parse("content/posts/about.md", models.KindPost, raw)
	var missing *models.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "date", missing.Field)
	assert.Equal(t, "content/posts/about.md", missing.Path)

	// The identical content is a valid page
	unit, err := Parse("content/pages/about.md", models.KindPage, raw)
	require.NoError(t, err)
	assert.Equal(t, "About Me", unit.FrontMatter.Title)
	assert.False(t, unit.FrontMatter.HasDate())
}

func TestParse_MalformedBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"broken yaml", "---\ntitle: [unclosed\n---\nbody\n"},
		{"broken toml", "+++\ntitle = \n+++\nbody\n"},
		{"unterminated block", "---\ntitle: A\ndate: 2023-09-10\nbody without closing\n"},
		{"no delimiter", "title: A\ndate: 2023-09-10\n\nbody\n"},
		{"delimiter not a full line", "----\ntitle: A\n---\nbody\n"},
		{"scalar block", "---\njust a string\n---\nbody\n"},
		{"invalid date", "---\ntitle: A\ndate: \"next tuesday\"\n---\nbody\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("content/posts/broken.md", models.KindPost, []byte(tt.raw))

			var malformed *models.MalformedFrontMatterError
			require.ErrorAs(t, err, &malformed, "got: %v", err)
			assert.Equal(t, "content/posts/broken.md", malformed.Path)
			assert.Contains(t, err.Error(), "content/posts/broken.md")
		})
	}
}

func TestParse_Menu(t *testing.T) {
	t.Run("nested table", func(t *testing.T) {
		raw := []byte(`---
title: About
menu:
  main:
    weight: 20
    params:
      icon: user
---
body
`)
		unit, err := Parse("content/pages/about.md", models.KindPage, raw)
		require.NoError(t, err)
		require.NotNil(t, unit.FrontMatter.Menu)
		require.NotNil(t, unit.FrontMatter.Menu.Main)
		assert.Equal(t, 20, unit.FrontMatter.Menu.Main.Weight)
		assert.Equal(t, "user", unit.FrontMatter.Menu.Main.Icon)
	})

	t.Run("bare shorthand", func(t *testing.T) {
		raw := []byte("---\ntitle: About\nmenu: main\n---\nbody\n")
		unit, err := Parse("content/pages/about.md", models.KindPage, raw)
		require.NoError(t, err)
		require.NotNil(t, unit.FrontMatter.Menu)
		require.NotNil(t, unit.FrontMatter.Menu.Main)
		assert.Zero(t, unit.FrontMatter.Menu.Main.Weight)
	})

	t.Run("unknown menu", func(t *testing.T) {
		raw := []byte("---\ntitle: About\nmenu: footer\n---\nbody\n")
		_, err := Parse("content/pages/about.md", models.KindPage, raw)
		var malformed *models.MalformedFrontMatterError
		require.ErrorAs(t, err, &malformed)
	})
}

func TestParse_CRLF(t *testing.T) {
	raw := []byte("---\r\ntitle: A\r\ndate: 2023-09-10\r\n---\r\nbody\r\n")

	unit, err := Parse("content/posts/a.md", models.KindPost, raw)
	require.NoError(t, err)
	assert.Equal(t, "A", unit.FrontMatter.Title)
	assert.Equal(t, "body\r\n", unit.Body)
}

func TestParse_BOM(t *testing.T) {
	raw := append([]byte{0xef, 0xbb, 0xbf}, []byte("---\ntitle: A\ndate: 2023-09-10\n---\nbody\n")...)

	unit, err := Parse("content/posts/a.md", models.KindPost, raw)
	require.NoError(t, err)
	assert.Equal(t, "A", unit.FrontMatter.Title)
}

func TestParse_ClosingDelimiterAtEOF(t *testing.T) {
	raw := []byte("---\ntitle: A\ndate: 2023-09-10\n---")

	unit, err := Parse("content/posts/a.md", models.KindPost, raw)
	require.NoError(t, err)
	assert.Empty(t, unit.Body)
}

func TestParse_SameContentSameHash(t *testing.T) {
	raw := []byte("---\ntitle: A\ndate: 2023-09-10\n---\nbody\n")

	first, err := Parse("content/posts/a.md", models.KindPost, raw)
	require.NoError(t, err)
	second, err := Parse("content/posts/b.md", models.KindPost, raw)
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)

	changed, err := Parse("content/posts/a.md", models.KindPost, append(raw, []byte("more\n")...))
	require.NoError(t, err)
	assert.NotEqual(t, first.ContentHash, changed.ContentHash)
}

func TestParse_ErrorsDoNotWrapEachOther(t *testing.T) {
	// A missing field is not a malformed block and vice versa
	raw := []byte("---\ndate: 2023-09-10\n---\nbody\n")
	_, err := Parse("content/posts/x.md", models.KindPost, raw)

	var malformed *models.MalformedFrontMatterError
	assert.False(t, errors.As(err, &malformed))
}
