package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/logging"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/nfo"
	"github.com/John-Robertt/titlemeta/internal/provider"
)

const stdinName = "-"

func (c cli) newParseCmd(g *globalFlags) *cobra.Command {
	var (
		format  string
		entries bool
	)
	cmd := &cobra.Command{
		Use:   "parse [file|-]...",
		Short: "解析页面并把结果写到 stdout",
		Long: `解析一个或多个页面（"-" 或不给参数表示从 stdin 读取）。

--format json 每页输出一个 JSON 对象 {"file","data","diagnostics"}；
--format nfo  每页输出一份 NFO XML。
任何页面无法导航（不是可用的 HTML）时退出码为 1。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := config.CLIArgs{
				Format: format, FormatSet: cmd.Flags().Changed("format"),
				Entries: entries, EntriesSet: cmd.Flags().Changed("entries"),
			}
			applyGlobal(cmd, g, &a)

			eff, err := config.LoadOptional(c.cwd, a)
			if err != nil {
				return usage("%v", err)
			}
			log, err := c.newLogger(eff)
			if err != nil {
				return usage("%v", err)
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}
			if _, ok := reg.Get(eff.Parser); !ok {
				return usage("未知 parser：%q（可用：%v）", eff.Parser, reg.Names())
			}

			if len(args) == 0 {
				args = []string{stdinName}
			}
			log = log.With(logging.FieldComponent, "parse", logging.FieldParser, eff.Parser)

			anyFailed := false
			for _, name := range args {
				plog := log.With(logging.FieldPage, name)
				html, err := c.readInput(name)
				if err != nil {
					plog.Error("read page failed", "error", err)
					anyFailed = true
					continue
				}

				res, err := provider.ParseWith(reg, eff.Parser, html)
				for _, d := range res.Diagnostics {
					plog.Debug("diagnostic", logging.FieldStage, d.Stage, logging.FieldField, string(d.Field), "message", d.Message)
				}
				if err != nil {
					anyFailed = true
					if markup.IsNavigationError(err) {
						plog.Warn("page not navigable", "error", err)
					} else {
						plog.Error("parse failed", "error", err)
					}
				}

				if err := c.emitPage(eff, name, res); err != nil {
					plog.Error("write output failed", "error", err)
					anyFailed = true
				}
			}
			if anyFailed {
				return failed()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", config.DefaultFormat, "输出格式：json|nfo")
	cmd.Flags().BoolVar(&entries, "entries", false, "额外输出 runtimes / color info 的结构化视图")
	return cmd
}

func (c cli) readInput(name string) ([]byte, error) {
	if name == stdinName {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(name)
}

// emitPage 按格式输出一页；NFO 模式下没有 title 的文档返回错误。
func (c cli) emitPage(eff config.EffectiveConfig, name string, res domain.Result) error {
	if eff.Format == config.FormatNFO {
		b, err := nfo.Encode(res.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		_, err = c.stdout.Write(append(b, '\n'))
		return err
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(domain.NewPageOutput(name, res, eff.Entries))
}
