// titlemeta 从已保存的 IMDb “combined” 标题页中抽取结构化元数据。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/logging"
	"github.com/John-Robertt/titlemeta/internal/provider"
	"github.com/John-Robertt/titlemeta/internal/provider/combined"
)

// 退出码：0 成功；1 有页面失败；2 用法或配置错误。
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// exitError 携带退出码；message 为空表示输出已经写过，不再重复打印。
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func failed() error { return &exitError{code: exitFailed} }

func usage(format string, args ...any) error {
	return &exitError{code: exitUsage, message: fmt.Sprintf(format, args...)}
}

// cli 是命令运行时的外部环境；测试可以替换任意部分。
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cwd    string
}

// globalFlags 是各子命令共享的参数。
type globalFlags struct {
	parser   string
	logLevel string
	logJSON  bool
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(exitFailed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	c := cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, cwd: cwd}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (c cli) run(ctx context.Context, args []string) int {
	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.message != "" {
			fmt.Fprintf(c.stderr, "错误：%s\n", ee.message)
		}
		return ee.code
	}
	// cobra 自身的参数错误（未知 flag、参数个数不符）。
	fmt.Fprintf(c.stderr, "错误：%v\n", err)
	return exitUsage
}

func (c cli) newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "titlemeta",
		Short:         "从 IMDb combined 标题页抽取结构化元数据",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.parser, "parser", config.DefaultParser, "使用的 parser")
	pf.StringVar(&g.logLevel, "log-level", "info", "日志级别：debug|info|warn|error")
	pf.BoolVar(&g.logJSON, "log-json", false, "以 JSON 输出日志（写到 stderr）")

	root.AddCommand(c.newParseCmd(g), c.newBatchCmd(g))
	return root
}

// applyGlobal 把显式指定的共享参数写入 CLIArgs。
func applyGlobal(cmd *cobra.Command, g *globalFlags, a *config.CLIArgs) {
	f := cmd.Flags()
	a.Parser, a.ParserSet = g.parser, f.Changed("parser")
	a.LogLevel, a.LogLevelSet = g.logLevel, f.Changed("log-level")
	a.LogJSON, a.LogJSONSet = g.logJSON, f.Changed("log-json")
}

func newRegistry() (provider.Registry, error) {
	return provider.NewRegistry(combined.Parser{})
}

func (c cli) newLogger(eff config.EffectiveConfig) (*slog.Logger, error) {
	return logging.New(c.stderr, logging.Options{
		Level:      eff.LogLevel,
		JSON:       eff.LogJSON,
		Timestamps: isTerminal(c.stderr),
	})
}

// isTerminal 只对 *os.File 做判断；测试里的 bytes.Buffer 一律视为非终端。
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
