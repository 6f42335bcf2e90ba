package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	templerrors "github.com/harusame/templight/internal/errors"
	"github.com/harusame/templight/internal/store"
)

// memProvider is a minimal in-memory SourceProvider for engine tests.
type memProvider struct {
	mutex    sync.Mutex
	content  map[string]string
	modTimes map[string]time.Time
}

func newMemProvider() *memProvider {
	return &memProvider{
		content:  make(map[string]string),
		modTimes: make(map[string]time.Time),
	}
}

func (p *memProvider) set(name, content string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.content[name] = content
	p.modTimes[name] = time.Now()
}

func (p *memProvider) ModTime(name string) (time.Time, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	mt, ok := p.modTimes[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", templerrors.ErrTemplateNotFound, name)
	}
	return mt, nil
}

func (p *memProvider) Read(name string) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	text, ok := p.content[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", templerrors.ErrTemplateNotFound, name)
	}
	return text, nil
}

const investmentTemplate = `---
title: 投資判断レポート
format: 4part
---
# 概要
{{project}}の投資判断を以下の構成でまとめてください。
要件: REQ-001 4部構成の厳守

# メリット
{{project}}の導入メリット。

# リスク
想定されるリスクと対策。

# エビデンス
根拠となるデータと実績。
`

func newTestEngine(t *testing.T) (*Engine, *memProvider) {
	t.Helper()
	provider := newMemProvider()
	st := store.NewStore(provider, time.Hour)
	return New(st), provider
}

func TestApplyTemplate(t *testing.T) {
	eng, provider := newTestEngine(t)
	provider.set("jp_investment_4part", investmentTemplate)

	t.Run("success", func(t *testing.T) {
		result := eng.ApplyTemplate(context.Background(), "jp_investment_4part",
			map[string]string{"project": "新物流システム"})

		require.True(t, result.Success)
		assert.Empty(t, result.Error)
		assert.Contains(t, result.RenderedText, "新物流システムの投資判断")
		assert.NotContains(t, result.RenderedText, "{{project}}")
		assert.Empty(t, result.Unresolved)
		require.NotNil(t, result.Structure)
		assert.True(t, result.Structure.IsComplete)
		assert.Equal(t, []string{"REQ-001 4部構成の厳守"}, result.Structure.RequirementTags)
		assert.False(t, result.AppliedAt.IsZero())
	})

	t.Run("unresolved placeholders reported", func(t *testing.T) {
		result := eng.ApplyTemplate(context.Background(), "jp_investment_4part", nil)

		require.True(t, result.Success, "unresolved placeholders are not an error")
		assert.Equal(t, []string{"project"}, result.Unresolved)
		assert.Contains(t, result.RenderedText, "{{project}}", "unresolved slots stay in place")
	})

	t.Run("missing template", func(t *testing.T) {
		result := eng.ApplyTemplate(context.Background(), "nope", nil)

		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
		assert.Nil(t, result.Structure)
	})

	t.Run("empty template", func(t *testing.T) {
		provider.set("blank", "   \n\t\n")

		result := eng.ApplyTemplate(context.Background(), "blank", nil)

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "empty")
	})
}

func TestValidateGeneratedReport(t *testing.T) {
	eng, _ := newTestEngine(t)

	t.Run("three of four succeeds", func(t *testing.T) {
		report := "# Executive Summary\n...\n# Benefits\n...\n# Risks\n...\n"

		v := eng.ValidateGeneratedReport(context.Background(), report, "jp_investment_4part")

		assert.InDelta(t, 0.75, v.QualityScore, 1e-9)
		assert.True(t, v.Success)
		require.Len(t, v.Issues, 1)
		assert.Equal(t, "Missing required section: Evidence", v.Issues[0])
	})

	t.Run("two of four fails both gates", func(t *testing.T) {
		report := "# 概要\n...\n# メリット\n...\n"

		v := eng.ValidateGeneratedReport(context.Background(), report, "jp_investment_4part")

		assert.InDelta(t, 0.5, v.QualityScore, 1e-9)
		assert.False(t, v.Success)
		assert.Len(t, v.Issues, 2)
	})

	t.Run("empty report", func(t *testing.T) {
		v := eng.ValidateGeneratedReport(context.Background(), "", "jp_investment_4part")

		assert.Zero(t, v.QualityScore)
		assert.False(t, v.Success)
		require.Len(t, v.Issues, 1)
		assert.Equal(t, "Report content is empty", v.Issues[0])
	})
}

// TestEndToEnd follows the production flow: load a complete template,
// then validate a generated report that only covers half the structure.
func TestEndToEnd(t *testing.T) {
	eng, provider := newTestEngine(t)
	provider.set("jp_investment_4part", investmentTemplate)

	applied := eng.ApplyTemplate(context.Background(), "jp_investment_4part",
		map[string]string{"project": "AI監査基盤"})
	require.True(t, applied.Success)
	require.True(t, applied.Structure.IsComplete)

	generated := strings.Join([]string{
		"# プロジェクト概要",
		"AI監査基盤の導入について。",
		"# 導入のメリット",
		"工数削減。",
	}, "\n")

	v := eng.ValidateGeneratedReport(context.Background(), generated, "jp_investment_4part")

	assert.InDelta(t, 0.5, v.QualityScore, 1e-9)
	assert.False(t, v.Success)
	assert.Len(t, v.Issues, 2)
}

func TestRenderPlaceholders(t *testing.T) {
	rendered, unresolved := renderPlaceholders(
		"{{a}} and {{ b }} and {{a}} and {{missing}}",
		map[string]string{"a": "1", "b": "2"},
	)

	assert.Equal(t, "1 and 2 and 1 and {{missing}}", rendered)
	assert.Equal(t, []string{"missing"}, unresolved, "each unresolved slot reported once")
}
