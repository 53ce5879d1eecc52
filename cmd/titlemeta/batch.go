package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/titlemeta/internal/app/batch"
	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
)

func (c cli) newBatchCmd(g *globalFlags) *cobra.Command {
	var (
		apply       bool
		concurrency int
		nfoOut      bool
		entries     bool
	)
	cmd := &cobra.Command{
		Use:   "batch [path]",
		Short: "扫描目录中的页面并批量解析（默认 dry-run）",
		Long: `扫描 path 下的 .html/.htm 页面（固定排除 cache/），并发解析并输出 RunReport。

未给 path 时必须在当前目录提供 titlemeta.toml，且其中包含 path。
--apply 时把结果写入 <path>/cache/titles/，并写出 <path>/cache/report.json。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			a := config.CLIArgs{
				Apply: apply, ApplySet: f.Changed("apply"),
				Concurrency: concurrency, ConcurrencySet: f.Changed("concurrency"),
				NFO: nfoOut, NFOSet: f.Changed("nfo"),
				Entries: entries, EntriesSet: f.Changed("entries"),
			}
			if len(args) == 1 {
				a.Path = args[0]
			}
			applyGlobal(cmd, g, &a)

			eff, err := config.LoadEffective(c.cwd, a)
			if err != nil {
				c.emitReport(reportForConfigError(c.cwd, a, err))
				return failed()
			}
			log, err := c.newLogger(eff)
			if err != nil {
				return usage("%v", err)
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			r := batch.Runner{Registry: reg, Logger: log}
			progressW, interactive := c.pickProgressWriter()
			if interactive {
				r.Observer = newProgressUI(progressW)
			}

			rr := r.Execute(cmd.Context(), eff)
			c.emitReport(rr)
			if interactive {
				emitLocations(progressW, eff)
			}
			if rr.Summary.Failed > 0 {
				return failed()
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&apply, "apply", false, "写入缓存与报告；支持 --apply=false 覆盖配置中的 apply = true")
	f.IntVar(&concurrency, "concurrency", config.DefaultConcurrency, "并发解析的页面数（1..32）")
	f.BoolVar(&nfoOut, "nfo", false, "apply 时额外写出 .nfo")
	f.BoolVar(&entries, "entries", false, "缓存 JSON 中附带结构化 entries")
	return cmd
}

// emitReport：stdout 是终端时打印摘要，否则 stdout 只输出一个 RunReport JSON（摘要走 stderr）。
func (c cli) emitReport(rr domain.RunReport) {
	summary := fmt.Sprintf("完成：processed=%d partial=%d failed=%d",
		rr.Summary.Processed, rr.Summary.Partial, rr.Summary.Failed)

	if isTerminal(c.stdout) {
		fmt.Fprintln(c.stdout, summary)
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed {
				continue
			}
			key := it.Page
			if key == "" {
				key = "<run>"
			}
			fmt.Fprintf(c.stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(rr)
	fmt.Fprintln(c.stderr, summary)
}

// reportForConfigError 把配置错误包装成只有一条合成 item 的报告，保持 stdout 契约。
func reportForConfigError(cwd string, a config.CLIArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	path, _ := filepath.Abs(cwd)
	if a.Path != "" {
		if filepath.IsAbs(a.Path) {
			path = filepath.Clean(a.Path)
		} else {
			path = filepath.Join(path, a.Path)
		}
	}
	rr := domain.RunReport{
		Path:       path,
		DryRun:     !(a.ApplySet && a.Apply),
		Parser:     a.Parser,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func (c cli) pickProgressWriter() (io.Writer, bool) {
	// 进度只在交互终端启用；优先 stderr，不污染 stdout JSON。
	if isTerminal(c.stderr) {
		return c.stderr, true
	}
	if isTerminal(c.stdout) {
		return c.stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	if eff.Apply {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
		fmt.Fprintf(w, "titles: %s\n", filepath.Join(eff.Path, "cache", "titles"))
	}
}
