// Package batch 扫描目录中的页面，并发解析，并汇总为 RunReport。
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/infra/cache"
	"github.com/John-Robertt/titlemeta/internal/infra/fsx"
	"github.com/John-Robertt/titlemeta/internal/logging"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/nfo"
	"github.com/John-Robertt/titlemeta/internal/provider"
	"github.com/John-Robertt/titlemeta/internal/scan"
)

// Runner 持有一次 batch 的依赖。零值 Logger 等价于丢弃日志。
type Runner struct {
	Registry provider.Registry
	Logger   *slog.Logger
	Observer Observer
}

// Execute 执行一次 batch（dry-run/apply），返回对外稳定的 RunReport。
//
// 单页失败只影响该页的 item；扫描失败、parser 未注册、缓存被占用等
// 全局问题以合成 item（page 为空）的形式出现在报告里。
// apply 时结果、可选的 NFO 与 report.json 都在 cache/.lock 锁内写出。
func (r Runner) Execute(ctx context.Context, eff config.EffectiveConfig) domain.RunReport {
	log := r.Logger
	if log == nil {
		log = logging.NewNop()
	}

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Path:      eff.Path,
		DryRun:    !eff.Apply,
		Parser:    eff.Parser,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, 64),
	}
	log = log.With(logging.FieldComponent, "batch", logging.FieldRunID, rr.RunID)

	if r.Observer != nil {
		r.Observer.OnStart(eff)
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		log.Info("batch finished",
			"processed", rr.Summary.Processed,
			"partial", rr.Summary.Partial,
			"failed", rr.Summary.Failed,
		)
		return rr
	}

	if _, ok := r.Registry.Get(eff.Parser); !ok {
		log.Error("parser not registered", logging.FieldParser, eff.Parser)
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeParserUnknown,
			fmt.Sprintf("未知 parser：%q（可用：%v）", eff.Parser, r.Registry.Names())))
		return finish()
	}

	store := cache.New(eff.Path, !eff.Apply)

	if eff.Apply {
		unlock, err := lockCache(store)
		if err != nil {
			log.Error("cache lock failed", "error", err)
			code := domain.ErrCodeIOFailed
			if errors.Is(err, errLocked) {
				code = domain.ErrCodeCacheLocked
			}
			rr.Items = append(rr.Items, syntheticFailed(code, err.Error()))
			return finish()
		}
		defer unlock()
	}

	scanStarted := time.Now()
	pages, err := scan.ScanPages(eff.Path, eff.ExcludeDirs)
	if err != nil {
		log.Error("scan failed", "error", err)
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
		return finish()
	}
	r.phase(log, "scan", map[string]any{"pages": len(pages)}, time.Since(scanStarted))

	workers := max(1, eff.Concurrency)
	r.phase(log, "parse", map[string]any{"workers": workers, "total_pages": len(pages)}, 0)

	type result struct {
		res domain.ItemResult
		dur time.Duration
	}

	jobs := make(chan domain.PageFile)
	results := make(chan result, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				started := time.Now()
				it := r.parseOne(ctx, log, eff, store, p)
				results <- result{res: it, dur: time.Since(started)}
			}
		}()
	}

	go func() {
		for _, p := range pages {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.res)
		if r.Observer != nil {
			r.Observer.OnItemDone(done, len(pages), it.res, it.dur)
		}
	}

	out := finish()
	if eff.Apply {
		if err := writeReport(store, out); err != nil {
			log.Error("write report failed", "path", store.ReportPath(), "error", err)
			out.Items = append(out.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("写入 report.json 失败：%v", err)))
			out.Finalize()
		}
	}
	return out
}

func (r Runner) phase(log *slog.Logger, name string, fields map[string]any, dur time.Duration) {
	args := make([]any, 0, 2*len(fields)+2)
	args = append(args, "phase", name)
	for k, v := range fields {
		args = append(args, k, v)
	}
	log.Debug("phase done", args...)
	if r.Observer != nil {
		r.Observer.OnPhaseDone(name, fields, dur)
	}
}

// parseOne 处理单页：读取 -> 解析 -> （apply 时）写缓存。
func (r Runner) parseOne(ctx context.Context, log *slog.Logger, eff config.EffectiveConfig, store cache.Store, p domain.PageFile) domain.ItemResult {
	item := domain.ItemResult{Page: p.RelPath, Status: domain.StatusProcessed}
	log = log.With(logging.FieldPage, p.RelPath)

	if err := ctx.Err(); err != nil {
		return fail(item, domain.ErrCodeCanceled, err.Error())
	}

	html, err := os.ReadFile(p.AbsPath)
	if err != nil {
		log.Warn("read page failed", "error", err)
		return fail(item, domain.ErrCodeIOFailed, fmt.Sprintf("读取页面失败：%v", err))
	}

	res, err := provider.ParseWith(r.Registry, eff.Parser, html)
	for _, d := range res.Diagnostics {
		item.Diagnostics = append(item.Diagnostics, d.String())
		log.Debug("diagnostic", logging.FieldStage, d.Stage, logging.FieldField, string(d.Field), "message", d.Message)
	}
	if err != nil {
		code := classify(err)
		log.Warn("parse failed", "error_code", code, "error", err)
		return fail(item, code, err.Error())
	}

	item.Title, _ = res.Data.String(domain.FieldTitle)
	item.Kind = string(res.Data.Kind())
	item.Fields = len(res.Data)
	if len(res.Diagnostics) > 0 {
		item.Status = domain.StatusPartial
	}

	if eff.Apply {
		outputs, err := writeOutputs(store, eff, p.RelPath, res)
		item.Outputs = outputs
		if err != nil {
			log.Warn("write outputs failed", "error", err)
			return fail(item, domain.ErrCodeIOFailed, err.Error())
		}
	}

	log.Debug("page done", logging.FieldStatus, item.Status, "fields", item.Fields)
	return item
}

func writeOutputs(store cache.Store, eff config.EffectiveConfig, rel string, res domain.Result) ([]string, error) {
	var outputs []string

	b, err := json.MarshalIndent(domain.NewPageOutput(rel, res, eff.Entries), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("编码结果失败：%w", err)
	}
	p, err := store.WriteTitle(rel, append(b, '\n'))
	if err != nil {
		return nil, describeWriteErr("结果", err)
	}
	outputs = append(outputs, p)

	// 没有 title 的文档无法生成 NFO；跳过但不视为失败（诊断已记录原因）。
	if eff.NFO && res.Data.Has(domain.FieldTitle) {
		x, err := nfo.Encode(res.Data)
		if err != nil {
			return outputs, fmt.Errorf("生成 NFO 失败：%w", err)
		}
		p, err := store.WriteTitleNFO(rel, x)
		if err != nil {
			return outputs, describeWriteErr("NFO", err)
		}
		outputs = append(outputs, p)
	}
	return outputs, nil
}

func describeWriteErr(what string, err error) error {
	if fsx.IsPathTypeConflict(err) {
		return fmt.Errorf("写入%s失败（目标路径被占用）：%w", what, err)
	}
	return fmt.Errorf("写入%s失败：%w", what, err)
}

func writeReport(store cache.Store, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	return store.WriteReport(append(b, '\n'))
}

// classify 把解析错误映射为 report 的 error_code。
func classify(err error) string {
	switch {
	case errors.Is(err, provider.ErrUnknownParser):
		return domain.ErrCodeParserUnknown
	case markup.IsNavigationError(err):
		return domain.ErrCodeNavigateFailed
	default:
		return domain.ErrCodeParseFailed
	}
}

var errLocked = errors.New("另一个 batch 正在写入该目录的 cache/")

// lockCache 获取 cache/.lock；返回的函数负责释放。
func lockCache(store cache.Store) (func(), error) {
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("创建 cache 目录失败：%w", err)
	}
	l := flock.New(store.LockPath())
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("获取 cache 锁失败：%w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w（%s）", errLocked, store.LockPath())
	}
	return func() { _ = l.Unlock() }, nil
}

func fail(item domain.ItemResult, code, msg string) domain.ItemResult {
	item.Status = domain.StatusFailed
	item.ErrorCode = code
	item.ErrorMsg = msg
	return item
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}
