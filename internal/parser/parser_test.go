package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructure_MetadataBlock(t *testing.T) {
	t.Run("basic metadata", func(t *testing.T) {
		raw := strings.Join([]string{
			"---",
			"title: 投資判断レポート",
			"version: 2",
			"author: \"報告書チーム\"",
			"---",
			"# 概要",
		}, "\n")

		s := ParseStructure(raw)

		assert.True(t, s.HasMetadata)
		assert.Equal(t, "投資判断レポート", s.Metadata["title"])
		assert.Equal(t, "2", s.Metadata["version"])
		assert.Equal(t, "報告書チーム", s.Metadata["author"], "surrounding quotes should be stripped")
		require.Len(t, s.Sections, 1)
		assert.Equal(t, "概要", s.Sections[0].Title)
	})

	t.Run("single quotes stripped", func(t *testing.T) {
		s := ParseStructure("---\nowner: 'pm'\n---\n")
		assert.Equal(t, "pm", s.Metadata["owner"])
	})

	t.Run("mismatched quotes kept", func(t *testing.T) {
		s := ParseStructure("---\nowner: \"pm'\n---\n")
		assert.Equal(t, "\"pm'", s.Metadata["owner"])
	})

	t.Run("empty metadata block", func(t *testing.T) {
		s := ParseStructure("---\n---\n# Benefits\n")
		assert.True(t, s.HasMetadata)
		assert.Empty(t, s.Metadata)
		require.Len(t, s.Sections, 1)
		assert.Equal(t, "Benefits", s.Sections[0].Title)
	})

	t.Run("unclosed metadata block records nothing", func(t *testing.T) {
		s := ParseStructure("---\ntitle: x\n# Heading\n")
		assert.False(t, s.HasMetadata)
		assert.Empty(t, s.Metadata)
		// The opening delimiter is not a heading, but the heading line still parses
		require.Len(t, s.Sections, 1)
		assert.Equal(t, "Heading", s.Sections[0].Title)
	})

	t.Run("malformed metadata lines skipped", func(t *testing.T) {
		s := ParseStructure("---\njust a line without colon\nkey: value\n---\n")
		assert.True(t, s.HasMetadata)
		assert.Equal(t, map[string]string{"key": "value"}, s.Metadata)
	})
}

func TestParseStructure_Sections(t *testing.T) {
	raw := strings.Join([]string{
		"intro text",
		"# Executive Summary",
		"body",
		"## 詳細メリット",
		"### Evidence",
		"not # a heading",
	}, "\n")

	s := ParseStructure(raw)

	require.Len(t, s.Sections, 3)
	assert.Equal(t, Section{Level: 1, Title: "Executive Summary", LineNumber: 2}, s.Sections[0])
	assert.Equal(t, Section{Level: 2, Title: "詳細メリット", LineNumber: 4}, s.Sections[1])
	assert.Equal(t, Section{Level: 3, Title: "Evidence", LineNumber: 5}, s.Sections[2])
}

func TestParseStructure_SectionLineNumbersAfterMetadata(t *testing.T) {
	raw := "---\ntitle: t\n---\n# 概要\n"
	s := ParseStructure(raw)

	require.Len(t, s.Sections, 1)
	assert.Equal(t, 4, s.Sections[0].LineNumber)
}

func TestParseStructure_RequirementTags(t *testing.T) {
	raw := strings.Join([]string{
		"# 概要",
		"本文 要件: REQ-001 利益率の明示",
		"要件: REQ-002",
		"要件:",
	}, "\n")

	s := ParseStructure(raw)

	assert.Equal(t, []string{"REQ-001 利益率の明示", "REQ-002"}, s.RequirementTags)
}

func TestParseStructure_CompletenessScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		score    float64
		complete bool
	}{
		{
			name:     "all four sections",
			raw:      "# 概要\n# メリット\n# リスク\n# エビデンス\n",
			score:    1.0,
			complete: true,
		},
		{
			name:     "three of four",
			raw:      "# Executive Summary\n# Benefits\n# Risks\n",
			score:    0.75,
			complete: true,
		},
		{
			name:     "two of four",
			raw:      "# 概要\n# 根拠\n",
			score:    0.5,
			complete: false,
		},
		{
			name:     "one of four",
			raw:      "## サマリー\n",
			score:    0.25,
			complete: false,
		},
		{
			name:     "none",
			raw:      "# はじめに\n# おわりに\n",
			score:    0,
			complete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseStructure(tt.raw)
			assert.InDelta(t, tt.score, s.CompletenessScore, 1e-9)
			assert.Equal(t, tt.complete, s.IsComplete)
		})
	}
}

func TestParseStructure_SynonymFlags(t *testing.T) {
	s := ParseStructure("# プロジェクト概要と背景\n# 期待される効果\n")

	assert.True(t, s.HasExecutiveSummary, "概要 matches the summary synonyms as a substring")
	assert.True(t, s.HasBenefits, "効果 matches the benefits synonyms")
	assert.False(t, s.HasRisks)
	assert.False(t, s.HasEvidence)
}

func TestParseStructure_WidthFolding(t *testing.T) {
	// Half-width katakana headings occur in copy-pasted legacy templates
	s := ParseStructure("# ｻﾏﾘｰ\n# ﾘｽｸ\n")

	assert.True(t, s.HasExecutiveSummary)
	assert.True(t, s.HasRisks)
}

func TestParseStructure_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "plain prose only\nno headings here\n"} {
		s := ParseStructure(raw)

		assert.Empty(t, s.Sections)
		assert.False(t, s.HasExecutiveSummary)
		assert.False(t, s.HasBenefits)
		assert.False(t, s.HasRisks)
		assert.False(t, s.HasEvidence)
		assert.Zero(t, s.CompletenessScore)
		assert.False(t, s.IsComplete)
	}
}

func TestExtractHeadingTitles(t *testing.T) {
	titles := ExtractHeadingTitles("# One\ntext\n## Two\n#\n")
	assert.Equal(t, []string{"One", "Two"}, titles, "empty heading titles are dropped")
}

func TestTitleMatches(t *testing.T) {
	synonyms := DefaultSynonyms()

	assert.True(t, TitleMatches("Executive Summary", SectionExecutiveSummary, synonyms))
	assert.True(t, TitleMatches("executive summary", SectionExecutiveSummary, synonyms))
	assert.True(t, TitleMatches("リスクと対策", SectionRisks, synonyms))
	assert.False(t, TitleMatches("はじめに", SectionRisks, synonyms))
}

func TestSynonymTable_Merge(t *testing.T) {
	base := DefaultSynonyms()
	merged := base.Merge(SynonymTable{SectionEvidence: {"裏付け"}})

	assert.Equal(t, []string{"裏付け"}, merged[SectionEvidence])
	assert.Equal(t, base[SectionRisks], merged[SectionRisks])
	assert.Contains(t, base[SectionEvidence], "根拠", "receiver must not be modified")
}
