package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
)

func TestProgressUI_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)

	p.OnStart(config.EffectiveConfig{Path: "/pages", Parser: "combined", Concurrency: 2, Apply: true})
	p.OnPhaseDone("scan", map[string]any{"pages": 3}, 1500*time.Millisecond)
	p.OnPhaseDone("parse", map[string]any{"workers": 2, "total_pages": 3}, 0)
	p.OnItemDone(1, 3, domain.ItemResult{Page: "a.html", Title: "The Matrix", Kind: "movie", Status: domain.StatusProcessed}, time.Second)
	p.OnItemDone(2, 3, domain.ItemResult{Page: "b.html", Status: domain.StatusPartial, Diagnostics: []string{"x"}}, 0)
	p.OnItemDone(3, 3, domain.ItemResult{Page: "c.html", Status: domain.StatusFailed, ErrorCode: domain.ErrCodeNavigateFailed, ErrorMsg: "no markup"}, 0)

	out := buf.String()
	assert.Contains(t, out, "titlemeta batch (apply)")
	assert.Contains(t, out, "扫描: pages=3 (1.5s)")
	assert.Contains(t, out, "解析: workers=2 total_pages=3")
	assert.Contains(t, out, `[1/3] a.html OK "The Matrix" [movie] (1.0s)`)
	assert.Contains(t, out, "[2/3] b.html PARTIAL (no title) diagnostics=1")
	assert.Contains(t, out, "[3/3] c.html FAIL navigate_failed: no markup")
	assert.False(t, p.tickerStarted, "最后一页完成后 ticker 必须停止")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "01:01:05", formatElapsed(3665*time.Second))
	assert.Equal(t, "0.0s", formatShortDuration(-time.Second))
	assert.Equal(t, "Ates Pa...", truncate("Ates Parcasi", 10))
	assert.Equal(t, "Ateş", truncate("Ateş", 4), "按字符而非字节截断")
	assert.Equal(t, "[]", formatStringListJSON(nil))
	assert.Equal(t, 0, intField(nil, "x"))
}
