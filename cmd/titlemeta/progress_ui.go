package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/titlemeta/internal/app/batch"
	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
)

var _ batch.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的简洁进度输出。
//
// - 全部写到 stderr（或退化到 stdout 终端），不污染 stdout 的 JSON 契约
// - 长时间没有页面完成时定期输出一行 keepalive
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	ok      int
	partial int
	fail    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (只解析，不写入)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] titlemeta batch (%s)\n", now.Format(time.TimeOnly), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	if eff.Source != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.Source)
	}
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  parser: %s\n", eff.Parser)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  nfo: %s\n", onOff(eff.NFO))
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 cache/\n", formatStringListJSON(eff.ExcludeDirs))
	if eff.Apply {
		fmt.Fprintln(p.w, "输出:")
		fmt.Fprintf(p.w, "  titles: %s\n", filepath.Join(eff.Path, "cache", "titles"))
		fmt.Fprintf(p.w, "  report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: pages=%d (%s)\n", intField(fields, "pages"), formatShortDuration(dur))
	case "parse":
		p.workers = intField(fields, "workers")
		p.total = intField(fields, "total_pages")
		fmt.Fprintf(p.w, "解析: workers=%d total_pages=%d\n\n", p.workers, p.total)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.StatusProcessed:
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK %s (%s)\n",
			idx, total, res.Page, describeTitle(res), formatShortDuration(dur))
	case domain.StatusPartial:
		p.partial++
		fmt.Fprintf(p.w, "[%d/%d] %s PARTIAL %s diagnostics=%d (%s)\n",
			idx, total, res.Page, describeTitle(res), len(res.Diagnostics), formatShortDuration(dur))
	default:
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.Page, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()

	// 最后一页完成：停止 ticker，避免结束后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					active := min(p.workers, p.total-p.done)
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d partial=%d fail=%d active=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.partial, p.fail, active, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// describeTitle 输出 “title [kind]”；缺失部分省略。
func describeTitle(res domain.ItemResult) string {
	s := fmt.Sprintf("%q", truncate(res.Title, 80))
	if res.Title == "" {
		s = "(no title)"
	}
	if res.Kind != "" {
		s += " [" + res.Kind + "]"
	}
	return s
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// truncate 按字符截断，避免切断多字节标题。
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

func intField(fields map[string]any, key string) int {
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
