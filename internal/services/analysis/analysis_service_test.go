package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/models"
)

func newTestService() *Service {
	return NewService(common.NewDefaultConfig(), arbor.NewLogger())
}

func TestAnalyze_WordCountAndReadingTime(t *testing.T) {
	svc := newTestService()

	unit := &models.ContentUnit{
		Body: "One two three four five.\n\nSix seven eight.\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)

	assert.Equal(t, 8, analysis.WordCount)
	assert.Equal(t, 1, analysis.ReadingTimeMin, "short bodies floor at one minute")
}

func TestAnalyze_ReadingTimeRoundsUp(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Analysis.WordsPerMinute = 10
	svc := NewService(config, arbor.NewLogger())

	// 25 words at 10 wpm reads in 2.5 minutes, reported as 3
	unit := &models.ContentUnit{
		Body: strings.TrimSpace(strings.Repeat("word ", 25)) + "\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)
	assert.Equal(t, 25, analysis.WordCount)
	assert.Equal(t, 3, analysis.ReadingTimeMin)
}

func TestAnalyze_EmptyBody(t *testing.T) {
	svc := newTestService()

	analysis, err := svc.Analyze(&models.ContentUnit{})
	require.NoError(t, err)

	assert.Zero(t, analysis.WordCount)
	assert.Equal(t, 1, analysis.ReadingTimeMin)
	assert.Empty(t, analysis.Excerpt)
	assert.Empty(t, analysis.Headings)
}

func TestAnalyze_CodeBlocksAreNotProse(t *testing.T) {
	svc := newTestService()

	unit := &models.ContentUnit{
		Body: "Two words.\n\n```sh\nthese code words never count at all\n```\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.WordCount)
}

func TestAnalyze_HeadingOutline(t *testing.T) {
	svc := newTestService()

	unit := &models.ContentUnit{
		Body: "# Title\n\nIntro.\n\n## Setup\n\nText.\n\n### Details\n\nMore.\n\n## Teardown\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)

	require.Len(t, analysis.Headings, 4)
	assert.Equal(t, models.Heading{Level: 1, Text: "Title"}, analysis.Headings[0])
	assert.Equal(t, models.Heading{Level: 2, Text: "Setup"}, analysis.Headings[1])
	assert.Equal(t, models.Heading{Level: 3, Text: "Details"}, analysis.Headings[2])
	assert.Equal(t, models.Heading{Level: 2, Text: "Teardown"}, analysis.Headings[3])
}

func TestAnalyze_ExcerptPrefersDescription(t *testing.T) {
	svc := newTestService()

	unit := &models.ContentUnit{
		FrontMatter: models.FrontMatter{Description: "The short version."},
		Body:        "A long first paragraph that should not be used.\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)
	assert.Equal(t, "The short version.", analysis.Excerpt)
}

func TestAnalyze_ExcerptFallsBackToFirstParagraph(t *testing.T) {
	svc := newTestService()

	unit := &models.ContentUnit{
		Body: "# Heading first\n\nThe opening paragraph.\n\nSecond paragraph.\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)
	assert.Equal(t, "The opening paragraph.", analysis.Excerpt)
}

func TestAnalyze_ExcerptTruncatesOnWordBoundary(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Analysis.ExcerptLength = 20
	svc := NewService(config, arbor.NewLogger())

	unit := &models.ContentUnit{
		Body: "Alpha bravo charlie delta echo foxtrot.\n",
	}

	analysis, err := svc.Analyze(unit)
	require.NoError(t, err)

	assert.Equal(t, "Alpha bravo charlie...", analysis.Excerpt)
	assert.NotContains(t, analysis.Excerpt, "delta")
}

func TestAnalyze_NilUnit(t *testing.T) {
	svc := newTestService()

	_, err := svc.Analyze(nil)
	require.Error(t, err)
}
